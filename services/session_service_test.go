package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"satex_server/events"
	"satex_server/models"
	"satex_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventLog collects bus events so assertions can run off the dispatcher
// goroutine.
type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) record(ev events.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) countTopic(topic string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Topic() == topic {
			n++
		}
	}
	return n
}

func (l *eventLog) last(topic string) events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Topic() == topic {
			return l.events[i]
		}
	}
	return nil
}

func newTestSession(t *testing.T) (*SessionService, *eventLog) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	_, dynamo := newTestDynamo()
	bus := events.NewBus()
	dispatcher := NewDispatcher()
	t.Cleanup(dispatcher.Stop)

	profiles := &UserProfileService{Dynamo: dynamo}
	feed := &FeedService{Dynamo: dynamo}
	session := &SessionService{
		Bus:      bus,
		Auth:     &AuthService{Dynamo: dynamo},
		Profiles: profiles,
		Friends:  &FriendService{Dynamo: dynamo, Feed: feed},
		Chat:     &ChatService{Dynamo: dynamo},
		Feed:     feed,
		Subs:     &SubscriptionService{Dispatcher: dispatcher, Interval: 10 * time.Millisecond},
		Store:    utils.NewLocalStore(filepath.Join(t.TempDir(), "local.json")),
	}
	t.Cleanup(func() { session.SignOut(context.Background()) })

	log := &eventLog{}
	for _, topic := range []string{
		events.TopicAuthStateChanged,
		events.TopicProfileUpdated,
		events.TopicFriendsUpdated,
		events.TopicRequestsUpdated,
		events.TopicGlobalChatUpdated,
		events.TopicDirectChatUpdated,
		events.TopicDMThreadsUpdated,
		events.TopicOnlineUsersUpdated,
		events.TopicFeedUpdated,
		events.TopicServiceError,
	} {
		bus.Subscribe(topic, log.record)
	}
	return session, log
}

func TestSignUpEstablishesSession(t *testing.T) {
	session, log := newTestSession(t)
	ctx := context.Background()

	token, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	identity := session.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, "Nova", identity.DisplayName)

	profile := session.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, identity.UserID, profile.UserID)

	// Six baseline watchers, no direct-chat watcher yet.
	assert.Equal(t, 6, session.ActiveHandleCount())

	// Sign-in marks the account online.
	require.Eventually(t, func() bool {
		fresh, err := session.Profiles.GetProfile(ctx, identity.UserID)
		return err == nil && fresh.Status.State == models.PresenceOnline
	}, time.Second, 10*time.Millisecond)

	// The baseline snapshots all arrive.
	require.Eventually(t, func() bool {
		return log.countTopic(events.TopicFriendsUpdated) >= 1 &&
			log.countTopic(events.TopicGlobalChatUpdated) >= 1 &&
			log.countTopic(events.TopicFeedUpdated) >= 1 &&
			log.countTopic(events.TopicOnlineUsersUpdated) >= 1 &&
			log.countTopic(events.TopicDMThreadsUpdated) >= 1 &&
			log.countTopic(events.TopicRequestsUpdated) >= 1
	}, time.Second, 10*time.Millisecond)

	auth := log.last(events.TopicAuthStateChanged).(events.AuthStateChanged)
	require.NotNil(t, auth.Identity)
	assert.Equal(t, identity.UserID, auth.Identity.UserID)
}

func TestRepeatSignInReplacesWatchers(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	require.NoError(t, session.OpenDirectChat(ctx, "zed"))
	assert.Equal(t, 7, session.ActiveHandleCount())

	// Signing in again without signing out swaps the watcher set instead
	// of stacking a second one, and drops the open conversation.
	_, err = session.SignIn(ctx, "nova@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, 6, session.ActiveHandleCount())
	assert.Equal(t, "", session.ActivePeerID())

	_, err = session.SignIn(ctx, "nova@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, 6, session.ActiveHandleCount())
}

func TestDisplayNameCachedForReturningVisitors(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, "", session.CachedDisplayName())

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "Nova", session.CachedDisplayName())

	// Sign-out keeps the cache so the next visit can still greet.
	session.SignOut(ctx)
	assert.Equal(t, "Nova", session.CachedDisplayName())

	// A fresh session over the same store file still knows the name.
	again := &SessionService{Store: session.Store}
	assert.Equal(t, "Nova", again.CachedDisplayName())
}

func TestSignInWrongPasswordLeavesSessionEmpty(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	session.SignOut(ctx)

	_, err = session.SignIn(ctx, "nova@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, session.Identity())
	assert.Equal(t, 0, session.ActiveHandleCount())
}

func TestSignOutTearsEverythingDown(t *testing.T) {
	session, log := newTestSession(t)
	ctx := context.Background()

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	userID := session.Identity().UserID
	require.NoError(t, session.OpenDirectChat(ctx, "zed"))
	assert.Equal(t, 7, session.ActiveHandleCount())

	session.SignOut(ctx)

	assert.Nil(t, session.Identity())
	assert.Nil(t, session.Profile())
	assert.Equal(t, "", session.ActivePeerID())
	assert.Equal(t, 0, session.ActiveHandleCount())

	// Presence drops to offline.
	fresh, err := session.Profiles.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOffline, fresh.Status.State)

	// Dependent views get explicit empty snapshots, then the nil identity.
	friends := log.last(events.TopicFriendsUpdated).(events.FriendsUpdated)
	assert.Empty(t, friends.Friends)
	auth := log.last(events.TopicAuthStateChanged).(events.AuthStateChanged)
	assert.Nil(t, auth.Identity)
}

func TestOpenDirectChat(t *testing.T) {
	session, log := newTestSession(t)
	ctx := context.Background()

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	me := session.Identity().UserID

	// Seed an inbound direct message so the open has history to load.
	chat := session.Chat
	zed := profileFor("zed", "Zed")
	meProfile, err := session.Profiles.GetProfile(ctx, me)
	require.NoError(t, err)
	_, err = chat.SendDirectMessage(ctx, zed, meProfile, "hey")
	require.NoError(t, err)

	require.NoError(t, session.OpenDirectChat(ctx, "zed"))
	assert.Equal(t, "zed", session.ActivePeerID())
	assert.Equal(t, 7, session.ActiveHandleCount())

	// Opening zeroes the unread counter.
	threads, err := chat.GetThreads(ctx, me)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 0, threads[0].Unread)

	// Transcript snapshot arrives, ascending, tagged with the target.
	require.Eventually(t, func() bool {
		ev := log.last(events.TopicDirectChatUpdated)
		if ev == nil {
			return false
		}
		update := ev.(events.DirectChatUpdated)
		return update.TargetID == "zed" &&
			update.ChannelID == DirectChannelID(me, "zed") &&
			len(update.Messages) == 1 && update.Messages[0].Text == "hey"
	}, time.Second, 10*time.Millisecond)

	// Re-opening the same target changes nothing.
	require.NoError(t, session.OpenDirectChat(ctx, "zed"))
	assert.Equal(t, 7, session.ActiveHandleCount())

	// Switching targets swaps the single direct watcher.
	require.NoError(t, session.OpenDirectChat(ctx, "kai"))
	assert.Equal(t, "kai", session.ActivePeerID())
	assert.Equal(t, 7, session.ActiveHandleCount())

	session.CloseDirectChat()
	assert.Equal(t, "", session.ActivePeerID())
	assert.Equal(t, 6, session.ActiveHandleCount())
}

func TestOpenDirectChatRequiresSession(t *testing.T) {
	session, _ := newTestSession(t)

	err := session.OpenDirectChat(context.Background(), "zed")
	assert.Error(t, err)
}

func TestVisibilityLifecycle(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	_, err := session.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	userID := session.Identity().UserID

	session.VisibilityChanged(ctx, false)
	fresh, err := session.Profiles.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceAway, fresh.Status.State)

	session.VisibilityChanged(ctx, true)
	fresh, err = session.Profiles.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnline, fresh.Status.State)

	session.Unload(ctx)
	fresh, err = session.Profiles.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOffline, fresh.Status.State)
}
