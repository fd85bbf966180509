package models

// Presence states (best-effort, never surfaced as errors)
const (
	PresenceOnline  = "online"
	PresenceAway    = "away"
	PresenceOffline = "offline"
)

// Chat channel kinds (global lobby vs direct conversation)
const (
	ChannelKindGlobal = "global"
	ChannelKindDirect = "direct"
)

// Friend request statuses
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

// Feed post type tags
const (
	PostTypeProfile  = "profile"
	PostTypeFavorite = "favorite"
	PostTypeFollow   = "follow"
	PostTypeFriend   = "friend"
	PostTypeStatus   = "status"
)
