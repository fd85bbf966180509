package models

// FriendEdge is one side of a mutual friendship. Accepting a request
// writes both mirrored edges in a single transaction, so either both
// exist or neither does.
type FriendEdge struct {
	OwnerID   string `dynamodbav:"ownerId" json:"ownerId"`   // Partition Key (PK)
	FriendID  string `dynamodbav:"friendId" json:"friendId"` // Sort Key (SK)
	Username  string `dynamodbav:"username" json:"username"` // friend's name at accept time
	Avatar    string `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// FriendsTable is the DynamoDB table name for friend edges
const FriendsTable = "Friends"

// FriendRequest is a pending request stored on the recipient's side only.
type FriendRequest struct {
	OwnerID   string `dynamodbav:"ownerId" json:"ownerId"` // Partition Key (PK) - recipient
	FromID    string `dynamodbav:"fromId" json:"fromId"`   // Sort Key (SK) - requester
	Username  string `dynamodbav:"username" json:"username"`
	Avatar    string `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	Status    string `dynamodbav:"status" json:"status"` // "pending"
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// FriendRequestsTable is the DynamoDB table name for pending requests
const FriendRequestsTable = "FriendRequests"

// FollowEdge is one side of a directed follow. Following writes an edge
// into the follower's Following table and a mirror into the followee's
// Followers table, plus both denormalized counters, in one transaction.
type FollowEdge struct {
	OwnerID   string `dynamodbav:"ownerId" json:"ownerId"` // Partition Key (PK)
	PeerID    string `dynamodbav:"peerId" json:"peerId"`   // Sort Key (SK)
	Username  string `dynamodbav:"username" json:"username"`
	Avatar    string `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// Following / Followers tables hold the two directions of a follow edge
const (
	FollowingTable = "Following"
	FollowersTable = "Followers"
)
