package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FeedWindowSize bounds how much of the feed is ever loaded.
const FeedWindowSize = 20

// FeedService writes and reads the denormalized activity feed.
type FeedService struct {
	Dynamo *DynamoService
}

// PostActivity appends one feed entry. The actor's name and avatar are
// copied in so rendering needs no join.
func (fs *FeedService) PostActivity(ctx context.Context, actor *models.UserProfile, postType string, data map[string]string) error {
	post := models.FeedPost{
		Feed:        models.FeedPartition,
		PostID:      newMessageID(),
		Type:        postType,
		ActorID:     actor.UserID,
		ActorName:   actor.Username,
		ActorAvatar: actor.Avatar,
		Data:        data,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := fs.Dynamo.PutItem(ctx, models.FeedTable, post); err != nil {
		return fmt.Errorf("failed to store feed post: %w", err)
	}
	return nil
}

// GetFeed returns the newest FeedWindowSize posts, most recent first.
func (fs *FeedService) GetFeed(ctx context.Context) ([]models.FeedPost, error) {
	keyCondition := "feed = :feed"
	expressionValues := map[string]types.AttributeValue{
		":feed": &types.AttributeValueMemberS{Value: models.FeedPartition},
	}

	items, err := fs.Dynamo.QueryItemsWithOptions(ctx, models.FeedTable, keyCondition, expressionValues, nil, FeedWindowSize, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	var posts []models.FeedPost
	if err := attributevalue.UnmarshalListOfMaps(items, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return posts, nil
}

// GetFeedUnsorted is the fallback read for the feed subscription: a
// plain key query with no sort direction, ordered in memory instead.
// The post id is a ULID, so sorting it descending recovers the same
// newest-first window GetFeed returns.
func (fs *FeedService) GetFeedUnsorted(ctx context.Context) ([]models.FeedPost, error) {
	keyCondition := "feed = :feed"
	expressionValues := map[string]types.AttributeValue{
		":feed": &types.AttributeValueMemberS{Value: models.FeedPartition},
	}

	items, err := fs.Dynamo.QueryItems(ctx, models.FeedTable, keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	var posts []models.FeedPost
	if err := attributevalue.UnmarshalListOfMaps(items, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].PostID > posts[j].PostID
	})
	if len(posts) > FeedWindowSize {
		posts = posts[:FeedWindowSize]
	}
	return posts, nil
}

// ToggleLike flips the caller's like on a post. The like edge and the
// post counter move in one transaction, guarded by the edge's existence,
// so rapid like/unlike sequences settle with a zero delta and no edge.
// Returns the resulting liked state.
func (fs *FeedService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	_, err := fs.Dynamo.GetItem(ctx, models.PostLikesTable, MarshalPairKey("postId", postID, "userId", userID))
	liked := err == nil
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return false, err
	}

	postKey := MarshalPairKey("feed", models.FeedPartition, "postId", postID)

	if !liked {
		edge, err := attributevalue.MarshalMap(models.PostLike{
			PostID: postID, UserID: userID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return false, err
		}
		transaction := []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(models.PostLikesTable),
				Item:                edge,
				ConditionExpression: aws.String("attribute_not_exists(postId)"),
			}},
			{Update: &types.Update{
				TableName:                 aws.String(models.FeedTable),
				Key:                       postKey,
				UpdateExpression:          aws.String("ADD likes :one"),
				ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
			}},
		}
		err = fs.Dynamo.TransactWrite(ctx, transaction)
		if errors.Is(err, ErrConditionFailed) {
			return true, nil // concurrent like already landed
		}
		if err != nil {
			return false, fmt.Errorf("failed to like post: %w", err)
		}
		return true, nil
	}

	transaction := []types.TransactWriteItem{
		{Delete: &types.Delete{
			TableName:           aws.String(models.PostLikesTable),
			Key:                 MarshalPairKey("postId", postID, "userId", userID),
			ConditionExpression: aws.String("attribute_exists(postId)"),
		}},
		{Update: &types.Update{
			TableName:           aws.String(models.FeedTable),
			Key:                 postKey,
			UpdateExpression:    aws.String("ADD likes :minus"),
			ConditionExpression: aws.String("likes >= :one"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":minus": &types.AttributeValueMemberN{Value: "-1"},
				":one":   &types.AttributeValueMemberN{Value: "1"},
			},
		}},
	}
	err = fs.Dynamo.TransactWrite(ctx, transaction)
	if errors.Is(err, ErrConditionFailed) {
		return false, nil // concurrent unlike, or counter already at floor
	}
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", err)
	}
	return false, nil
}
