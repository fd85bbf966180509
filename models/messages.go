package models

// Message is one chat message. ChannelID is either ChannelKindGlobal for
// the lobby or the canonical sorted-pair id of a direct conversation.
// MessageID is a ULID, so sorting by it is sorting by send time.
type Message struct {
	ChannelID  string `dynamodbav:"channelId" json:"channelId"` // Partition Key (PK)
	MessageID  string `dynamodbav:"messageId" json:"messageId"` // Sort Key (SK), ULID
	SenderID   string `dynamodbav:"senderId" json:"senderId"`
	SenderName string `dynamodbav:"senderName" json:"senderName"` // display name at send time
	Avatar     string `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	Text       string `dynamodbav:"text" json:"text"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// GlobalChannelID is the shared lobby channel
const GlobalChannelID = "global"

// ChatThread is one participant's summary of a direct conversation.
// Each channel has two mirrored thread documents, one per side, so a
// user's thread list is a single-partition query and the unread counter
// is a plain number owned by the viewer.
type ChatThread struct {
	OwnerID      string `dynamodbav:"ownerId" json:"ownerId"`     // Partition Key (PK)
	ChannelID    string `dynamodbav:"channelId" json:"channelId"` // Sort Key (SK)
	PeerID       string `dynamodbav:"peerId" json:"peerId"`
	PeerName     string `dynamodbav:"peerName" json:"peerName"`
	PeerAvatar   string `dynamodbav:"peerAvatar,omitempty" json:"peerAvatar,omitempty"`
	LastMessage  string `dynamodbav:"lastMessage" json:"lastMessage"`
	LastSenderID string `dynamodbav:"lastSenderId" json:"lastSenderId"`
	Unread       int    `dynamodbav:"unread" json:"unread"`
	UpdatedAt    string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ChatThreadsTable is the DynamoDB table name for direct-chat summaries
const ChatThreadsTable = "ChatThreads"
