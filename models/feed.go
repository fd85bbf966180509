package models

// FeedPost is a denormalized activity entry. The actor's name and avatar
// are copied at creation time so the feed renders without joins.
type FeedPost struct {
	Feed        string            `dynamodbav:"feed" json:"feed"`       // Partition Key (PK), always FeedPartition
	PostID      string            `dynamodbav:"postId" json:"postId"`   // Sort Key (SK), ULID
	Type        string            `dynamodbav:"type" json:"type"`       // see PostType constants
	ActorID     string            `dynamodbav:"actorId" json:"actorId"`
	ActorName   string            `dynamodbav:"actorName" json:"actorName"`
	ActorAvatar string            `dynamodbav:"actorAvatar,omitempty" json:"actorAvatar,omitempty"`
	Data        map[string]string `dynamodbav:"data,omitempty" json:"data,omitempty"`
	Likes       int               `dynamodbav:"likes" json:"likes"`
	Comments    int               `dynamodbav:"comments" json:"comments"`
	CreatedAt   string            `dynamodbav:"createdAt" json:"createdAt"`
}

// FeedTable is the DynamoDB table name for the social feed
const FeedTable = "SocialFeed"

// FeedPartition is the single feed partition; the ULID sort key gives
// chronological order within it.
const FeedPartition = "global"

// PostLike marks that a user has liked a post. Its presence is the
// like-edge state; the post's counter is kept in the same transaction.
type PostLike struct {
	PostID    string `dynamodbav:"postId" json:"postId"` // Partition Key (PK)
	UserID    string `dynamodbav:"userId" json:"userId"` // Sort Key (SK)
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// PostLikesTable is the DynamoDB table name for post like edges
const PostLikesTable = "PostLikes"
