package services

import (
	"context"
	"log"
	"reflect"
	"sync"
	"time"
)

// Dispatcher serializes every subscription delivery onto one goroutine.
// Snapshot callbacks therefore never run concurrently with each other,
// and deliveries for a single watcher arrive in fetch order. Callbacks
// across different watchers have no relative ordering guarantee.
type Dispatcher struct {
	mu      sync.Mutex
	ch      chan func()
	stopped bool
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{ch: make(chan func(), 64)}
	go func() {
		for fn := range d.ch {
			fn()
		}
	}()
	return d
}

// Do queues fn for delivery. After Stop, deliveries are silently
// discarded - the in-flight fetch result of a cancelled subscription is
// dropped, not aborted.
func (d *Dispatcher) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.ch <- fn
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	close(d.ch)
}

// WatchHandle is the opaque cancellation token returned by every Watch.
// Cancel releases the watcher's resources; calling it more than once is
// harmless, and every handle must be cancelled at sign-out.
type WatchHandle struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (h *WatchHandle) Cancel() {
	h.once.Do(h.cancel)
}

// WatchConfig describes one live query subscription.
type WatchConfig struct {
	// Scope names the subscription in diagnostics ("feed", "globalChat").
	Scope string
	// Fetch runs the primary (sorted) query.
	Fetch func(ctx context.Context) (interface{}, error)
	// Fallback, when set, is the unsorted variant tried once after a
	// primary failure (missing-index recovery). May be nil.
	Fallback func(ctx context.Context) (interface{}, error)
	// OnNext receives each authoritative snapshot, starting with the
	// full current result set. Deliveries are replace-not-merge.
	OnNext func(snapshot interface{})
	// OnError receives the terminal failure after the fallback has also
	// failed; the watcher stops afterwards.
	OnError func(scope string, err error)
}

// SubscriptionService turns bounded queries into live subscriptions by
// polling and delivering changed snapshots. Interval defaults to 2s.
type SubscriptionService struct {
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// Watch starts a poller for the query. The first successful fetch is
// always delivered; later fetches are delivered only when the snapshot
// changed. A primary failure falls back once per tick to the unsorted
// variant; if both fail the watcher reports the error and stops.
func (ss *SubscriptionService) Watch(cfg WatchConfig) *WatchHandle {
	interval := ss.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &WatchHandle{cancel: cancel}

	go func() {
		var last interface{}
		first := true

		deliver := func() bool {
			snapshot, err := cfg.Fetch(ctx)
			if err != nil && cfg.Fallback != nil {
				log.Printf("subscription %s: primary query failed (%v), trying fallback", cfg.Scope, err)
				snapshot, err = cfg.Fallback(ctx)
			}
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				ss.Dispatcher.Do(func() { cfg.OnError(cfg.Scope, err) })
				return false
			}
			if ctx.Err() != nil {
				return false
			}
			if first || !reflect.DeepEqual(snapshot, last) {
				first = false
				last = snapshot
				ss.Dispatcher.Do(func() { cfg.OnNext(snapshot) })
			}
			return true
		}

		if !deliver() {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !deliver() {
					return
				}
			}
		}
	}()

	return handle
}
