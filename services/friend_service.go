package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrSelfFriend      = errors.New("cannot friend yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrRequestPending  = errors.New("request already sent")
	ErrRequestedYou    = errors.New("this user already sent you a request - accept it instead")
	ErrRequestNotFound = errors.New("request not found")
)

// FriendService owns the friend-request and follow workflows. Everything
// that must hold together (mirrored edges, denormalized counters) goes
// through one transaction; feed posts ride behind, best effort.
type FriendService struct {
	Dynamo *DynamoService
	Feed   *FeedService
}

// GetFriends lists the user's friend edges.
func (fs *FriendService) GetFriends(ctx context.Context, userID string) ([]models.FriendEdge, error) {
	items, err := fs.Dynamo.QueryItems(ctx, models.FriendsTable, "ownerId = :ownerId",
		map[string]types.AttributeValue{":ownerId": &types.AttributeValueMemberS{Value: userID}}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friends: %w", err)
	}
	var friends []models.FriendEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &friends); err != nil {
		return nil, fmt.Errorf("failed to parse friends: %w", err)
	}
	return friends, nil
}

// GetRequests lists pending requests addressed to the user.
func (fs *FriendService) GetRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	items, err := fs.Dynamo.QueryItems(ctx, models.FriendRequestsTable, "ownerId = :ownerId",
		map[string]types.AttributeValue{":ownerId": &types.AttributeValueMemberS{Value: userID}}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	var requests []models.FriendRequest
	if err := attributevalue.UnmarshalListOfMaps(items, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	return requests, nil
}

// SendFriendRequest creates a pending request on the target's side after
// guarding against self-targeting, an existing friendship, and pending
// requests in either direction. A reverse pending request gets its own
// message so the UI can steer the user to accept instead.
func (fs *FriendService) SendFriendRequest(ctx context.Context, from *models.UserProfile, targetID string) error {
	if from.UserID == targetID {
		return ErrSelfFriend
	}

	if _, err := fs.Dynamo.GetItem(ctx, models.FriendsTable, MarshalPairKey("ownerId", from.UserID, "friendId", targetID)); err == nil {
		return ErrAlreadyFriends
	} else if !errors.Is(err, ErrItemNotFound) {
		return err
	}

	if _, err := fs.Dynamo.GetItem(ctx, models.FriendRequestsTable, MarshalPairKey("ownerId", targetID, "fromId", from.UserID)); err == nil {
		return ErrRequestPending
	} else if !errors.Is(err, ErrItemNotFound) {
		return err
	}

	if _, err := fs.Dynamo.GetItem(ctx, models.FriendRequestsTable, MarshalPairKey("ownerId", from.UserID, "fromId", targetID)); err == nil {
		return ErrRequestedYou
	} else if !errors.Is(err, ErrItemNotFound) {
		return err
	}

	request := models.FriendRequest{
		OwnerID:   targetID,
		FromID:    from.UserID,
		Username:  from.Username,
		Avatar:    from.Avatar,
		Status:    models.RequestStatusPending,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return fs.Dynamo.PutItem(ctx, models.FriendRequestsTable, request)
}

// AcceptFriendRequest creates both mirrored friend edges and deletes the
// pending request in a single transaction. Re-running after the
// transaction already committed is a no-op, so a crashed-and-retried
// accept cannot duplicate edges or leave a dangling request.
func (fs *FriendService) AcceptFriendRequest(ctx context.Context, me *models.UserProfile, fromID string) error {
	item, err := fs.Dynamo.GetItem(ctx, models.FriendRequestsTable, MarshalPairKey("ownerId", me.UserID, "fromId", fromID))
	if err != nil {
		if !errors.Is(err, ErrItemNotFound) {
			return err
		}
		// No request left. Already accepted?
		if _, err := fs.Dynamo.GetItem(ctx, models.FriendsTable, MarshalPairKey("ownerId", me.UserID, "friendId", fromID)); err == nil {
			return nil
		}
		return ErrRequestNotFound
	}

	var request models.FriendRequest
	if err := attributevalue.UnmarshalMap(item, &request); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	myEdge, err := attributevalue.MarshalMap(models.FriendEdge{
		OwnerID: me.UserID, FriendID: fromID,
		Username: request.Username, Avatar: request.Avatar, CreatedAt: now,
	})
	if err != nil {
		return err
	}
	theirEdge, err := attributevalue.MarshalMap(models.FriendEdge{
		OwnerID: fromID, FriendID: me.UserID,
		Username: me.Username, Avatar: me.Avatar, CreatedAt: now,
	})
	if err != nil {
		return err
	}

	transaction := []types.TransactWriteItem{
		{Put: &types.Put{TableName: aws.String(models.FriendsTable), Item: myEdge}},
		{Put: &types.Put{TableName: aws.String(models.FriendsTable), Item: theirEdge}},
		{Delete: &types.Delete{
			TableName: aws.String(models.FriendRequestsTable),
			Key:       MarshalPairKey("ownerId", me.UserID, "fromId", fromID),
		}},
	}
	if err := fs.Dynamo.TransactWrite(ctx, transaction); err != nil {
		return fmt.Errorf("failed to accept request: %w", err)
	}

	// Feed post rides outside the transaction; losing it cannot corrupt
	// friendship state.
	if fs.Feed != nil {
		if err := fs.Feed.PostActivity(ctx, me, models.PostTypeFriend, map[string]string{
			"friendId":   fromID,
			"friendName": request.Username,
		}); err != nil {
			log.Printf("feed post after accept failed: %v", err)
		}
	}
	return nil
}

// DeclineFriendRequest drops the pending request. Declining an absent
// request is a no-op.
func (fs *FriendService) DeclineFriendRequest(ctx context.Context, userID, fromID string) error {
	return fs.Dynamo.DeleteItem(ctx, models.FriendRequestsTable, MarshalPairKey("ownerId", userID, "fromId", fromID))
}

// Follow creates the mirrored follow edges and bumps both denormalized
// counters in one transaction. Following someone already followed is a
// no-op: the edge's existence condition cancels the whole transaction,
// counters included.
func (fs *FriendService) Follow(ctx context.Context, me, target *models.UserProfile) error {
	if me.UserID == target.UserID {
		return ErrSelfFriend
	}

	now := time.Now().UTC().Format(time.RFC3339)
	followingEdge, err := attributevalue.MarshalMap(models.FollowEdge{
		OwnerID: me.UserID, PeerID: target.UserID,
		Username: target.Username, Avatar: target.Avatar, CreatedAt: now,
	})
	if err != nil {
		return err
	}
	followerEdge, err := attributevalue.MarshalMap(models.FollowEdge{
		OwnerID: target.UserID, PeerID: me.UserID,
		Username: me.Username, Avatar: me.Avatar, CreatedAt: now,
	})
	if err != nil {
		return err
	}

	one := map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}}
	transaction := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(models.FollowingTable),
			Item:                followingEdge,
			ConditionExpression: aws.String("attribute_not_exists(ownerId)"),
		}},
		{Put: &types.Put{TableName: aws.String(models.FollowersTable), Item: followerEdge}},
		{Update: &types.Update{
			TableName:                 aws.String(models.UsersTable),
			Key:                       MarshalKey("userId", me.UserID),
			UpdateExpression:          aws.String("ADD followingCount :one"),
			ExpressionAttributeValues: one,
		}},
		{Update: &types.Update{
			TableName:                 aws.String(models.UsersTable),
			Key:                       MarshalKey("userId", target.UserID),
			UpdateExpression:          aws.String("ADD followersCount :one"),
			ExpressionAttributeValues: one,
		}},
	}

	err = fs.Dynamo.TransactWrite(ctx, transaction)
	if errors.Is(err, ErrConditionFailed) {
		return nil // already following
	}
	if err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}

	if fs.Feed != nil {
		if err := fs.Feed.PostActivity(ctx, me, models.PostTypeFollow, map[string]string{
			"targetId":   target.UserID,
			"targetName": target.Username,
		}); err != nil {
			log.Printf("feed post after follow failed: %v", err)
		}
	}
	return nil
}

// Unfollow removes both edges and decrements both counters atomically.
// Counters are clamped at zero: a decrement is only included for a
// counter that is currently positive, so drift can never push a count
// negative. Unfollowing someone not followed is a no-op.
func (fs *FriendService) Unfollow(ctx context.Context, meID, targetID string) error {
	if _, err := fs.Dynamo.GetItem(ctx, models.FollowingTable, MarshalPairKey("ownerId", meID, "peerId", targetID)); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil // not following
		}
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		transaction := []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(models.FollowingTable),
				Key:                 MarshalPairKey("ownerId", meID, "peerId", targetID),
				ConditionExpression: aws.String("attribute_exists(ownerId)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(models.FollowersTable),
				Key:       MarshalPairKey("ownerId", targetID, "peerId", meID),
			}},
		}

		decrement := func(userID, counter string) (types.TransactWriteItem, bool, error) {
			item, err := fs.Dynamo.GetItem(ctx, models.UsersTable, MarshalKey("userId", userID))
			if err != nil {
				return types.TransactWriteItem{}, false, err
			}
			var profile models.UserProfile
			if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
				return types.TransactWriteItem{}, false, err
			}
			count := profile.FollowingCount
			if counter == "followersCount" {
				count = profile.FollowersCount
			}
			if count <= 0 {
				return types.TransactWriteItem{}, false, nil
			}
			return types.TransactWriteItem{Update: &types.Update{
				TableName:           aws.String(models.UsersTable),
				Key:                 MarshalKey("userId", userID),
				UpdateExpression:    aws.String("ADD #c :minus"),
				ConditionExpression: aws.String("#c >= :one"),
				ExpressionAttributeNames: map[string]string{
					"#c": counter,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":minus": &types.AttributeValueMemberN{Value: "-1"},
					":one":   &types.AttributeValueMemberN{Value: "1"},
				},
			}}, true, nil
		}

		if item, ok, err := decrement(meID, "followingCount"); err != nil {
			return err
		} else if ok {
			transaction = append(transaction, item)
		}
		if item, ok, err := decrement(targetID, "followersCount"); err != nil {
			return err
		} else if ok {
			transaction = append(transaction, item)
		}

		err := fs.Dynamo.TransactWrite(ctx, transaction)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrConditionFailed) {
			// Edge raced away or a counter hit zero between read and
			// commit. If the edge is gone we are done; otherwise retry
			// once with fresh counter reads.
			if _, getErr := fs.Dynamo.GetItem(ctx, models.FollowingTable, MarshalPairKey("ownerId", meID, "peerId", targetID)); errors.Is(getErr, ErrItemNotFound) {
				return nil
			}
			continue
		}
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return fmt.Errorf("failed to unfollow: retries exhausted")
}

// GetFollowing lists users the given user follows.
func (fs *FriendService) GetFollowing(ctx context.Context, userID string) ([]models.FollowEdge, error) {
	items, err := fs.Dynamo.QueryItems(ctx, models.FollowingTable, "ownerId = :ownerId",
		map[string]types.AttributeValue{":ownerId": &types.AttributeValueMemberS{Value: userID}}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch following: %w", err)
	}
	var edges []models.FollowEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, fmt.Errorf("failed to parse following: %w", err)
	}
	return edges, nil
}
