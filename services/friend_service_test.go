package services

import (
	"context"
	"testing"

	"satex_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(t *testing.T, dynamo *DynamoService, id, name string) *models.UserProfile {
	t.Helper()
	profile := profileFor(id, name)
	profile.SchemaVersion = models.ProfileSchemaVersion
	require.NoError(t, dynamo.PutItem(context.Background(), models.UsersTable, profile))
	return profile
}

func TestFriendRequestLifecycle(t *testing.T) {
	fake, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo, Feed: &FeedService{Dynamo: dynamo}}
	nova := seedProfile(t, dynamo, "nova", "Nova")
	zed := seedProfile(t, dynamo, "zed", "Zed")
	ctx := context.Background()

	require.NoError(t, friends.SendFriendRequest(ctx, nova, "zed"))

	// The request lives on the recipient's side only.
	requests, err := friends.GetRequests(ctx, "zed")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "nova", requests[0].FromID)
	assert.Equal(t, "Nova", requests[0].Username)

	mine, err := friends.GetRequests(ctx, "nova")
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Duplicate send and the reverse direction are both refused.
	assert.ErrorIs(t, friends.SendFriendRequest(ctx, nova, "zed"), ErrRequestPending)
	assert.ErrorIs(t, friends.SendFriendRequest(ctx, zed, "nova"), ErrRequestedYou)

	require.NoError(t, friends.AcceptFriendRequest(ctx, zed, "nova"))

	// Both mirrored edges exist, the request is gone, one feed post landed.
	novaFriends, err := friends.GetFriends(ctx, "nova")
	require.NoError(t, err)
	require.Len(t, novaFriends, 1)
	assert.Equal(t, "zed", novaFriends[0].FriendID)

	zedFriends, err := friends.GetFriends(ctx, "zed")
	require.NoError(t, err)
	require.Len(t, zedFriends, 1)
	assert.Equal(t, "nova", zedFriends[0].FriendID)

	requests, err = friends.GetRequests(ctx, "zed")
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Equal(t, 1, fake.Count(models.FeedTable))

	// Once friends, a new request in either direction is refused.
	assert.ErrorIs(t, friends.SendFriendRequest(ctx, nova, "zed"), ErrAlreadyFriends)
	assert.ErrorIs(t, friends.SendFriendRequest(ctx, zed, "nova"), ErrAlreadyFriends)
}

func TestAcceptFriendRequestRetryIsIdempotent(t *testing.T) {
	fake, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo, Feed: &FeedService{Dynamo: dynamo}}
	nova := seedProfile(t, dynamo, "nova", "Nova")
	zed := seedProfile(t, dynamo, "zed", "Zed")
	ctx := context.Background()

	require.NoError(t, friends.SendFriendRequest(ctx, nova, "zed"))
	require.NoError(t, friends.AcceptFriendRequest(ctx, zed, "nova"))

	// A client retry after the transaction committed changes nothing.
	require.NoError(t, friends.AcceptFriendRequest(ctx, zed, "nova"))
	assert.Equal(t, 2, fake.Count(models.FriendsTable))
	assert.Equal(t, 0, fake.Count(models.FriendRequestsTable))
	assert.Equal(t, 1, fake.Count(models.FeedTable))
}

func TestAcceptFriendRequestUnknown(t *testing.T) {
	_, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo}
	zed := seedProfile(t, dynamo, "zed", "Zed")

	err := friends.AcceptFriendRequest(context.Background(), zed, "ghost")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	_, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo}
	nova := seedProfile(t, dynamo, "nova", "Nova")

	assert.ErrorIs(t, friends.SendFriendRequest(context.Background(), nova, "nova"), ErrSelfFriend)
}

func TestDeclineFriendRequest(t *testing.T) {
	fake, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo}
	nova := seedProfile(t, dynamo, "nova", "Nova")
	seedProfile(t, dynamo, "zed", "Zed")
	ctx := context.Background()

	require.NoError(t, friends.SendFriendRequest(ctx, nova, "zed"))
	require.NoError(t, friends.DeclineFriendRequest(ctx, "zed", "nova"))
	assert.Equal(t, 0, fake.Count(models.FriendRequestsTable))
	assert.Equal(t, 0, fake.Count(models.FriendsTable))

	// Declining again, or declining something that never existed, is quiet.
	require.NoError(t, friends.DeclineFriendRequest(ctx, "zed", "nova"))
}

func TestFollowAndUnfollow(t *testing.T) {
	fake, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo, Feed: &FeedService{Dynamo: dynamo}}
	profiles := &UserProfileService{Dynamo: dynamo}
	nova := seedProfile(t, dynamo, "nova", "Nova")
	zed := seedProfile(t, dynamo, "zed", "Zed")
	ctx := context.Background()

	require.NoError(t, friends.Follow(ctx, nova, zed))

	following, err := friends.GetFollowing(ctx, "nova")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "zed", following[0].PeerID)
	assert.Equal(t, 1, fake.Count(models.FollowersTable))

	novaProfile, err := profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, 1, novaProfile.FollowingCount)
	zedProfile, err := profiles.GetProfile(ctx, "zed")
	require.NoError(t, err)
	assert.Equal(t, 1, zedProfile.FollowersCount)

	// Double follow: the edge condition cancels the whole transaction,
	// counters included.
	require.NoError(t, friends.Follow(ctx, nova, zed))
	novaProfile, err = profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, 1, novaProfile.FollowingCount)
	assert.Equal(t, 1, fake.Count(models.FollowingTable))

	require.NoError(t, friends.Unfollow(ctx, "nova", "zed"))
	assert.Equal(t, 0, fake.Count(models.FollowingTable))
	assert.Equal(t, 0, fake.Count(models.FollowersTable))

	novaProfile, err = profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, 0, novaProfile.FollowingCount)
	zedProfile, err = profiles.GetProfile(ctx, "zed")
	require.NoError(t, err)
	assert.Equal(t, 0, zedProfile.FollowersCount)

	// Unfollowing again is a no-op and counters stay at the zero floor.
	require.NoError(t, friends.Unfollow(ctx, "nova", "zed"))
	novaProfile, err = profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, 0, novaProfile.FollowingCount)
}

func TestFollowSelf(t *testing.T) {
	_, dynamo := newTestDynamo()
	friends := &FriendService{Dynamo: dynamo}
	nova := seedProfile(t, dynamo, "nova", "Nova")

	assert.ErrorIs(t, friends.Follow(context.Background(), nova, nova), ErrSelfFriend)
}

func TestFollowWritesFeedPost(t *testing.T) {
	_, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	friends := &FriendService{Dynamo: dynamo, Feed: feed}
	nova := seedProfile(t, dynamo, "nova", "Nova")
	zed := seedProfile(t, dynamo, "zed", "Zed")
	ctx := context.Background()

	require.NoError(t, friends.Follow(ctx, nova, zed))

	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostTypeFollow, posts[0].Type)
	assert.Equal(t, "nova", posts[0].ActorID)
	assert.Equal(t, "Zed", posts[0].Data["targetName"])
}
