package views

import (
	"testing"

	"satex_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeedViewHeadlines(t *testing.T) {
	tests := []struct {
		name string
		post models.FeedPost
		want string
	}{
		{
			"friend",
			models.FeedPost{Type: models.PostTypeFriend, ActorName: "Nova", Data: map[string]string{"friendName": "Zed"}},
			"Nova became friends with Zed",
		},
		{
			"follow",
			models.FeedPost{Type: models.PostTypeFollow, ActorName: "Nova", Data: map[string]string{"targetName": "Zed"}},
			"Nova started following Zed",
		},
		{
			"favorite",
			models.FeedPost{Type: models.PostTypeFavorite, ActorName: "Nova", Data: map[string]string{"gameId": "snake"}},
			"Nova favorited snake",
		},
		{
			"status",
			models.FeedPost{Type: models.PostTypeStatus, ActorName: "Nova", Data: map[string]string{"text": "gg everyone"}},
			"Nova: gg everyone",
		},
		{
			"profile",
			models.FeedPost{Type: models.PostTypeProfile, ActorName: "Nova"},
			"Nova updated their profile",
		},
		{
			"unknown type degrades",
			models.FeedPost{Type: "mystery", ActorName: "Nova"},
			"Nova did something",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := BuildFeedView(FeedState{Posts: []models.FeedPost{tc.post}})
			require.Len(t, items, 1)
			assert.Equal(t, tc.want, items[0].Headline)
		})
	}
}

func TestBuildFeedViewCarriesCountsAndLikedState(t *testing.T) {
	state := FeedState{
		Posts: []models.FeedPost{
			{PostID: "p2", Type: models.PostTypeStatus, ActorID: "zed", ActorName: "Zed", ActorAvatar: "zed.png", Likes: 3, Comments: 1, CreatedAt: "2026-08-30T10:00:00Z"},
			{PostID: "p1", Type: models.PostTypeStatus, ActorID: "nova", ActorName: "Nova"},
		},
		LikedIDs: map[string]bool{"p2": true},
	}

	items := BuildFeedView(state)
	require.Len(t, items, 2)

	assert.Equal(t, "p2", items[0].PostID)
	assert.Equal(t, "zed.png", items[0].Avatar)
	assert.Equal(t, 3, items[0].Likes)
	assert.Equal(t, 1, items[0].Comments)
	assert.True(t, items[0].Liked)
	assert.Equal(t, "2026-08-30T10:00:00Z", items[0].CreatedAt)

	assert.False(t, items[1].Liked)
}

func TestBuildFeedViewEmpty(t *testing.T) {
	assert.Empty(t, BuildFeedView(FeedState{}))
}
