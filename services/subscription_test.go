package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubs(t *testing.T) *SubscriptionService {
	t.Helper()
	dispatcher := NewDispatcher()
	t.Cleanup(dispatcher.Stop)
	return &SubscriptionService{Dispatcher: dispatcher, Interval: 10 * time.Millisecond}
}

func TestWatchDeliversFirstSnapshotAndSuppressesUnchanged(t *testing.T) {
	subs := newTestSubs(t)

	var fetches int64
	var mu sync.Mutex
	var delivered [][]string

	handle := subs.Watch(WatchConfig{
		Scope: "test",
		Fetch: func(ctx context.Context) (interface{}, error) {
			atomic.AddInt64(&fetches, 1)
			return []string{"a", "b"}, nil
		},
		OnNext: func(snapshot interface{}) {
			mu.Lock()
			delivered = append(delivered, snapshot.([]string))
			mu.Unlock()
		},
		OnError: func(scope string, err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer handle.Cancel()

	// Let several polls run; only the first identical snapshot lands.
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) >= 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Equal(t, []string{"a", "b"}, delivered[0])
}

func TestWatchDeliversChangedSnapshots(t *testing.T) {
	subs := newTestSubs(t)

	var version int64
	var mu sync.Mutex
	var delivered []int64

	handle := subs.Watch(WatchConfig{
		Scope: "test",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return atomic.LoadInt64(&version), nil
		},
		OnNext: func(snapshot interface{}) {
			mu.Lock()
			delivered = append(delivered, snapshot.(int64))
			mu.Unlock()
		},
		OnError: func(scope string, err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer handle.Cancel()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, time.Second, 5*time.Millisecond)

	atomic.StoreInt64(&version, 7)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 2 && delivered[1] == 7
	}, time.Second, 5*time.Millisecond)
}

func TestWatchFallsBackWhenPrimaryFails(t *testing.T) {
	subs := newTestSubs(t)

	var mu sync.Mutex
	var delivered []string

	handle := subs.Watch(WatchConfig{
		Scope: "test",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("index missing")
		},
		Fallback: func(ctx context.Context) (interface{}, error) {
			return "fallback", nil
		},
		OnNext: func(snapshot interface{}) {
			mu.Lock()
			delivered = append(delivered, snapshot.(string))
			mu.Unlock()
		},
		OnError: func(scope string, err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer handle.Cancel()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1 && delivered[0] == "fallback"
	}, time.Second, 5*time.Millisecond)
}

func TestWatchReportsErrorAndStops(t *testing.T) {
	subs := newTestSubs(t)

	var fetches int64
	errCh := make(chan error, 1)

	handle := subs.Watch(WatchConfig{
		Scope: "test",
		Fetch: func(ctx context.Context) (interface{}, error) {
			atomic.AddInt64(&fetches, 1)
			return nil, errors.New("boom")
		},
		OnNext:  func(snapshot interface{}) { t.Error("unexpected snapshot") },
		OnError: func(scope string, err error) { errCh <- err },
	})
	defer handle.Cancel()

	select {
	case err := <-errCh:
		assert.EqualError(t, err, "boom")
	case <-time.After(time.Second):
		t.Fatal("error never reported")
	}

	// The watcher stopped after the terminal error: no further fetches.
	settled := atomic.LoadInt64(&fetches)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt64(&fetches))
}

func TestWatchCancelStopsPolling(t *testing.T) {
	subs := newTestSubs(t)

	var fetches int64
	handle := subs.Watch(WatchConfig{
		Scope: "test",
		Fetch: func(ctx context.Context) (interface{}, error) {
			atomic.AddInt64(&fetches, 1)
			return 1, nil
		},
		OnNext:  func(snapshot interface{}) {},
		OnError: func(scope string, err error) {},
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) >= 1
	}, time.Second, 5*time.Millisecond)

	handle.Cancel()
	handle.Cancel() // double cancel is harmless

	settled := atomic.LoadInt64(&fetches)
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt64(&fetches), settled+1)
}

func TestDispatcherRunsCallbacksInOrder(t *testing.T) {
	dispatcher := NewDispatcher()
	defer dispatcher.Stop()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		i := i
		dispatcher.Do(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 9 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher never drained")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestDispatcherDropsAfterStop(t *testing.T) {
	dispatcher := NewDispatcher()
	dispatcher.Stop()
	dispatcher.Stop() // idempotent

	// Must not panic on the closed channel.
	dispatcher.Do(func() { t.Error("callback ran after stop") })
	time.Sleep(20 * time.Millisecond)
}
