package events

import "satex_server/models"

// Event is the closed set of bus payloads. Every kind the portal emits is
// enumerated in this file; a switch over Topic() covers them all.
type Event interface {
	Topic() string
}

// Topic names. These double as the socket.io event names pushed to clients.
const (
	TopicAuthStateChanged   = "authStateChanged"
	TopicProfileUpdated     = "profileUpdated"
	TopicFriendsUpdated     = "friendsUpdated"
	TopicRequestsUpdated    = "requestsUpdated"
	TopicOnlineUsersUpdated = "onlineUsersUpdated"
	TopicGlobalChatUpdated  = "globalChatUpdated"
	TopicDirectChatUpdated  = "directChatUpdated"
	TopicDMThreadsUpdated   = "dmThreadsUpdated"
	TopicFeedUpdated        = "feedUpdated"
	TopicServiceError       = "serviceError"
)

// Identity is the authenticated principal carried by AuthStateChanged.
type Identity struct {
	UserID      string `json:"userId"`
	EmailID     string `json:"emailId"`
	DisplayName string `json:"displayName"`
}

// AuthStateChanged fires on sign-in and sign-out. Identity is nil when
// signed out.
type AuthStateChanged struct {
	Identity *Identity `json:"identity"`
}

func (AuthStateChanged) Topic() string { return TopicAuthStateChanged }

type ProfileUpdated struct {
	Profile models.UserProfile `json:"profile"`
}

func (ProfileUpdated) Topic() string { return TopicProfileUpdated }

type FriendsUpdated struct {
	Friends []models.FriendEdge `json:"friends"`
}

func (FriendsUpdated) Topic() string { return TopicFriendsUpdated }

type RequestsUpdated struct {
	Requests []models.FriendRequest `json:"requests"`
}

func (RequestsUpdated) Topic() string { return TopicRequestsUpdated }

type OnlineUsersUpdated struct {
	Users []models.UserProfile `json:"users"`
}

func (OnlineUsersUpdated) Topic() string { return TopicOnlineUsersUpdated }

type GlobalChatUpdated struct {
	Messages []models.Message `json:"messages"`
}

func (GlobalChatUpdated) Topic() string { return TopicGlobalChatUpdated }

// DirectChatUpdated carries the full transcript snapshot for one direct
// conversation; renderers replace, never merge. ChannelID names the
// socket room the snapshot is pushed to.
type DirectChatUpdated struct {
	TargetID  string           `json:"targetId"`
	ChannelID string           `json:"channelId"`
	Messages  []models.Message `json:"messages"`
}

func (DirectChatUpdated) Topic() string { return TopicDirectChatUpdated }

type DMThreadsUpdated struct {
	Threads []models.ChatThread `json:"threads"`
}

func (DMThreadsUpdated) Topic() string { return TopicDMThreadsUpdated }

type FeedUpdated struct {
	Posts []models.FeedPost `json:"posts"`
}

func (FeedUpdated) Topic() string { return TopicFeedUpdated }

// ServiceError is the non-blocking diagnostic broadcast for background
// failures (subscriptions, feed listeners). User-initiated operations
// return their errors directly instead.
type ServiceError struct {
	Scope   string `json:"scope"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ServiceError) Topic() string { return TopicServiceError }
