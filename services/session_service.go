package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"satex_server/events"
	"satex_server/models"
	"satex_server/utils"
)

// displayNameKey is the local-store key for the last signed-in display
// name, shown to returning visitors before they authenticate.
const displayNameKey = "satex_display_name"

// SessionService is the portal's session state store: the authenticated
// identity, the cached collections behind every live view, and the
// subscription handles that feed them. It is constructed once and torn
// down wholesale at sign-out - no handle survives logout.
type SessionService struct {
	Bus      *events.Bus
	Auth     *AuthService
	Profiles *UserProfileService
	Friends  *FriendService
	Chat     *ChatService
	Feed     *FeedService
	Subs     *SubscriptionService
	Store    *utils.LocalStore

	mu             sync.Mutex
	identity       *events.Identity
	profile        *models.UserProfile
	friends        []models.FriendEdge
	requests       []models.FriendRequest
	threads        []models.ChatThread
	onlineUsers    []models.UserProfile
	globalMessages []models.Message
	directMessages []models.Message
	activePeerID   string
	handles        []*WatchHandle
	directHandle   *WatchHandle

	hooksOnce sync.Once
}

// Identity returns the signed-in principal, or nil.
func (s *SessionService) Identity() *events.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Profile returns the cached profile snapshot, or nil when signed out.
func (s *SessionService) Profile() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	copied := *s.profile
	return &copied
}

// ActivePeerID returns the open direct-conversation target, or "".
func (s *SessionService) ActivePeerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePeerID
}

// SignUp creates the account and establishes the session.
func (s *SessionService) SignUp(ctx context.Context, username, email, password string) (string, error) {
	profile, token, err := s.Auth.SignUp(ctx, username, email, password)
	if err != nil {
		return "", err
	}
	s.establish(ctx, profile)
	return token, nil
}

// SignIn authenticates and establishes the session.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (string, error) {
	profile, token, err := s.Auth.SignIn(ctx, email, password)
	if err != nil {
		return "", err
	}
	s.establish(ctx, profile)
	return token, nil
}

// establish runs the sign-in state transition: identity, profile
// ensure/upgrade, baseline subscriptions, presence, hooks (once).
// A repeat sign-in replaces the session: the previous watcher set is
// cancelled first so handle counts never stack.
func (s *SessionService) establish(ctx context.Context, profile *models.UserProfile) {
	s.mu.Lock()
	previous := s.handles
	previousDirect := s.directHandle
	s.handles = nil
	s.directHandle = nil
	s.activePeerID = ""
	s.directMessages = nil
	s.mu.Unlock()
	for _, h := range previous {
		h.Cancel()
	}
	if previousDirect != nil {
		previousDirect.Cancel()
	}

	// Re-load through GetProfile so the schema upgrade applies.
	fresh, err := s.Profiles.GetProfile(ctx, profile.UserID)
	if err != nil {
		log.Printf("profile load during sign-in failed, using sign-in copy: %v", err)
		fresh = profile
	}

	identity := &events.Identity{
		UserID:      fresh.UserID,
		EmailID:     fresh.EmailID,
		DisplayName: fresh.Username,
	}

	s.mu.Lock()
	s.identity = identity
	s.profile = fresh
	s.mu.Unlock()

	if s.Store != nil {
		if err := s.Store.Set(displayNameKey, fresh.Username); err != nil {
			log.Printf("display name cache write failed: %v", err)
		}
	}

	s.Bus.Publish(events.AuthStateChanged{Identity: identity})
	s.Bus.Publish(events.ProfileUpdated{Profile: *fresh})

	s.startBaselineWatchers(fresh.UserID)
	s.Profiles.UpdateStatus(ctx, fresh.UserID, models.PresenceOnline, "")
	s.hooksOnce.Do(func() {
		log.Printf("presence lifecycle hooks registered")
	})
}

// startBaselineWatchers starts the always-on subscriptions: friends,
// requests, global chat, feed, DM threads and online users. Each cache
// write and event publish happens on the dispatcher goroutine.
func (s *SessionService) startBaselineWatchers(userID string) {
	onError := func(scope string, err error) {
		s.Bus.Publish(events.ServiceError{
			Scope:   scope,
			Code:    "subscription-failed",
			Message: err.Error(),
		})
	}

	add := func(h *WatchHandle) {
		s.mu.Lock()
		s.handles = append(s.handles, h)
		s.mu.Unlock()
	}

	add(s.Subs.Watch(WatchConfig{
		Scope: "friends",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Friends.GetFriends(ctx, userID)
		},
		OnNext: func(snapshot interface{}) {
			friends := snapshot.([]models.FriendEdge)
			s.mu.Lock()
			s.friends = friends
			s.mu.Unlock()
			s.Bus.Publish(events.FriendsUpdated{Friends: friends})
		},
		OnError: onError,
	}))

	add(s.Subs.Watch(WatchConfig{
		Scope: "requests",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Friends.GetRequests(ctx, userID)
		},
		OnNext: func(snapshot interface{}) {
			requests := snapshot.([]models.FriendRequest)
			s.mu.Lock()
			s.requests = requests
			s.mu.Unlock()
			s.Bus.Publish(events.RequestsUpdated{Requests: requests})
		},
		OnError: onError,
	}))

	add(s.Subs.Watch(WatchConfig{
		Scope: "globalChat",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Chat.GetMessages(ctx, models.GlobalChannelID, GlobalHistoryLimit, true)
		},
		Fallback: func(ctx context.Context) (interface{}, error) {
			return s.Chat.GetMessages(ctx, models.GlobalChannelID, GlobalHistoryLimit, false)
		},
		OnNext: func(snapshot interface{}) {
			messages := snapshot.([]models.Message)
			s.mu.Lock()
			s.globalMessages = messages
			s.mu.Unlock()
			s.Bus.Publish(events.GlobalChatUpdated{Messages: messages})
		},
		OnError: onError,
	}))

	add(s.Subs.Watch(WatchConfig{
		Scope: "feed",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Feed.GetFeed(ctx)
		},
		Fallback: func(ctx context.Context) (interface{}, error) {
			return s.Feed.GetFeedUnsorted(ctx)
		},
		OnNext: func(snapshot interface{}) {
			posts := snapshot.([]models.FeedPost)
			s.Bus.Publish(events.FeedUpdated{Posts: posts})
		},
		OnError: onError,
	}))

	add(s.Subs.Watch(WatchConfig{
		Scope: "dmThreads",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Chat.GetThreads(ctx, userID)
		},
		OnNext: func(snapshot interface{}) {
			threads := snapshot.([]models.ChatThread)
			s.mu.Lock()
			s.threads = threads
			s.mu.Unlock()
			s.Bus.Publish(events.DMThreadsUpdated{Threads: threads})
		},
		OnError: onError,
	}))

	add(s.Subs.Watch(WatchConfig{
		Scope: "onlineUsers",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Profiles.GetOnlineUsers(ctx)
		},
		OnNext: func(snapshot interface{}) {
			users := snapshot.([]models.UserProfile)
			s.mu.Lock()
			s.onlineUsers = users
			s.mu.Unlock()
			s.Bus.Publish(events.OnlineUsersUpdated{Users: users})
		},
		OnError: onError,
	}))
}

// SignOut tears the session down: presence offline, every subscription
// handle cancelled, caches reset, and empty "updated" events broadcast
// so dependent views clear instead of showing stale data.
func (s *SessionService) SignOut(ctx context.Context) {
	s.mu.Lock()
	identity := s.identity
	handles := s.handles
	direct := s.directHandle
	s.identity = nil
	s.profile = nil
	s.friends = nil
	s.requests = nil
	s.threads = nil
	s.onlineUsers = nil
	s.globalMessages = nil
	s.directMessages = nil
	s.activePeerID = ""
	s.handles = nil
	s.directHandle = nil
	s.mu.Unlock()

	if identity != nil {
		s.Profiles.UpdateStatus(ctx, identity.UserID, models.PresenceOffline, "")
	}
	for _, h := range handles {
		h.Cancel()
	}
	if direct != nil {
		direct.Cancel()
	}

	s.Bus.Publish(events.FriendsUpdated{Friends: []models.FriendEdge{}})
	s.Bus.Publish(events.RequestsUpdated{Requests: []models.FriendRequest{}})
	s.Bus.Publish(events.DMThreadsUpdated{Threads: []models.ChatThread{}})
	s.Bus.Publish(events.OnlineUsersUpdated{Users: []models.UserProfile{}})
	s.Bus.Publish(events.GlobalChatUpdated{Messages: []models.Message{}})
	s.Bus.Publish(events.FeedUpdated{Posts: []models.FeedPost{}})
	s.Bus.Publish(events.AuthStateChanged{Identity: nil})
}

// CachedDisplayName returns the display name cached from the last
// sign-in on this install, or "" when no one has signed in here yet.
// Sign-out leaves the cache alone so the next visit can still greet.
func (s *SessionService) CachedDisplayName() string {
	if s.Store == nil {
		return ""
	}
	var name string
	if err := s.Store.Get(displayNameKey, &name); err != nil {
		return ""
	}
	return name
}

// ActiveHandleCount reports how many subscriptions are live.
func (s *SessionService) ActiveHandleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.handles)
	if s.directHandle != nil {
		n++
	}
	return n
}

// OpenDirectChat switches the direct-message target. Re-opening the
// current target is a no-op; any previous target's subscription is
// cancelled first so at most one direct watcher is ever live. The
// viewer's unread counter for the channel is zeroed on open.
func (s *SessionService) OpenDirectChat(ctx context.Context, targetID string) error {
	s.mu.Lock()
	identity := s.identity
	if identity == nil {
		s.mu.Unlock()
		return fmt.Errorf("not signed in")
	}
	if s.activePeerID == targetID {
		s.mu.Unlock()
		return nil
	}
	previous := s.directHandle
	s.directHandle = nil
	s.activePeerID = targetID
	s.mu.Unlock()

	if previous != nil {
		previous.Cancel()
	}

	channelID := DirectChannelID(identity.UserID, targetID)
	if err := s.Chat.MarkThreadRead(ctx, identity.UserID, channelID); err != nil {
		log.Printf("unread reset on open failed: %v", err)
	}

	handle := s.Subs.Watch(WatchConfig{
		Scope: "directChat",
		Fetch: func(ctx context.Context) (interface{}, error) {
			return s.Chat.GetMessages(ctx, channelID, DirectHistoryLimit, false)
		},
		OnNext: func(snapshot interface{}) {
			messages := snapshot.([]models.Message)
			s.mu.Lock()
			if s.activePeerID != targetID {
				s.mu.Unlock()
				return // stale delivery after another switch
			}
			s.directMessages = messages
			s.mu.Unlock()
			s.Bus.Publish(events.DirectChatUpdated{TargetID: targetID, ChannelID: channelID, Messages: messages})
		},
		OnError: func(scope string, err error) {
			s.Bus.Publish(events.ServiceError{Scope: scope, Code: "subscription-failed", Message: err.Error()})
		},
	})

	s.mu.Lock()
	if s.activePeerID == targetID {
		s.directHandle = handle
		s.mu.Unlock()
	} else {
		s.mu.Unlock()
		handle.Cancel()
	}
	return nil
}

// CloseDirectChat leaves direct mode entirely.
func (s *SessionService) CloseDirectChat() {
	s.mu.Lock()
	handle := s.directHandle
	s.directHandle = nil
	s.activePeerID = ""
	s.directMessages = nil
	s.mu.Unlock()
	if handle != nil {
		handle.Cancel()
	}
}

// VisibilityChanged moves presence between online and away when the
// portal tab gains or loses focus. Best effort.
func (s *SessionService) VisibilityChanged(ctx context.Context, visible bool) {
	identity := s.Identity()
	if identity == nil {
		return
	}
	state := models.PresenceAway
	if visible {
		state = models.PresenceOnline
	}
	s.Profiles.UpdateStatus(ctx, identity.UserID, state, "")
}

// Unload marks the user offline on portal close. Best effort.
func (s *SessionService) Unload(ctx context.Context) {
	identity := s.Identity()
	if identity == nil {
		return
	}
	s.Profiles.UpdateStatus(ctx, identity.UserID, models.PresenceOffline, "")
}
