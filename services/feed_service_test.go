package services

import (
	"context"
	"fmt"
	"testing"

	"satex_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostActivityDenormalizesActor(t *testing.T) {
	_, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	nova := profileFor("nova", "Nova")
	ctx := context.Background()

	require.NoError(t, feed.PostActivity(ctx, nova, models.PostTypeStatus, map[string]string{"text": "gg"}))

	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "nova", posts[0].ActorID)
	assert.Equal(t, "Nova", posts[0].ActorName)
	assert.Equal(t, nova.Avatar, posts[0].ActorAvatar)
	assert.Equal(t, "gg", posts[0].Data["text"])
	assert.NotEmpty(t, posts[0].PostID)
}

func TestGetFeedWindowNewestFirst(t *testing.T) {
	_, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	nova := profileFor("nova", "Nova")
	ctx := context.Background()

	for i := 0; i < FeedWindowSize+5; i++ {
		require.NoError(t, feed.PostActivity(ctx, nova, models.PostTypeStatus, map[string]string{
			"text": fmt.Sprintf("post %d", i),
		}))
	}

	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, FeedWindowSize)
	assert.Equal(t, fmt.Sprintf("post %d", FeedWindowSize+4), posts[0].Data["text"])
	assert.Equal(t, fmt.Sprintf("post %d", 5), posts[len(posts)-1].Data["text"])
}

func TestGetFeedUnsortedMatchesSortedWindow(t *testing.T) {
	_, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	nova := profileFor("nova", "Nova")
	ctx := context.Background()

	for i := 0; i < FeedWindowSize+5; i++ {
		require.NoError(t, feed.PostActivity(ctx, nova, models.PostTypeStatus, map[string]string{
			"text": fmt.Sprintf("post %d", i),
		}))
	}

	sorted, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	unsorted, err := feed.GetFeedUnsorted(ctx)
	require.NoError(t, err)

	// The fallback recovers the same newest-first window in memory.
	assert.Equal(t, sorted, unsorted)
}

func TestToggleLikeFlipsEdgeAndCounter(t *testing.T) {
	fake, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	nova := profileFor("nova", "Nova")
	ctx := context.Background()

	require.NoError(t, feed.PostActivity(ctx, nova, models.PostTypeStatus, map[string]string{"text": "hi"}))
	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	postID := posts[0].PostID

	liked, err := feed.ToggleLike(ctx, "zed", postID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, fake.Count(models.PostLikesTable))

	posts, err = feed.GetFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, posts[0].Likes)

	// The second toggle lands the counter back at zero with no edge left.
	liked, err = feed.ToggleLike(ctx, "zed", postID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, fake.Count(models.PostLikesTable))

	posts, err = feed.GetFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, posts[0].Likes)
}

func TestToggleLikeTwoUsers(t *testing.T) {
	_, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	nova := profileFor("nova", "Nova")
	ctx := context.Background()

	require.NoError(t, feed.PostActivity(ctx, nova, models.PostTypeFriend, map[string]string{"friendName": "Zed"}))
	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	postID := posts[0].PostID

	for _, user := range []string{"zed", "kai"} {
		liked, err := feed.ToggleLike(ctx, user, postID)
		require.NoError(t, err)
		assert.True(t, liked)
	}

	posts, err = feed.GetFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, posts[0].Likes)

	// One user unliking leaves the other's like intact.
	liked, err := feed.ToggleLike(ctx, "zed", postID)
	require.NoError(t, err)
	assert.False(t, liked)

	posts, err = feed.GetFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, posts[0].Likes)
}
