package views

import (
	"fmt"

	"satex_server/models"
)

// FeedItem is one rendered feed row: an actor line built from the
// denormalized post, plus interaction counts.
type FeedItem struct {
	PostID    string
	ActorID   string
	ActorName string
	Avatar    string
	Headline  string
	Likes     int
	Comments  int
	Liked     bool
	CreatedAt string
}

// FeedState is the snapshot the feed renderer works from.
type FeedState struct {
	Posts    []models.FeedPost // newest-first as delivered
	LikedIDs map[string]bool   // the viewer's like edges
}

// BuildFeedView turns the post window into rendered rows, newest first.
func BuildFeedView(state FeedState) []FeedItem {
	items := make([]FeedItem, 0, len(state.Posts))
	for _, post := range state.Posts {
		items = append(items, FeedItem{
			PostID:    post.PostID,
			ActorID:   post.ActorID,
			ActorName: post.ActorName,
			Avatar:    post.ActorAvatar,
			Headline:  headline(post),
			Likes:     post.Likes,
			Comments:  post.Comments,
			Liked:     state.LikedIDs[post.PostID],
			CreatedAt: post.CreatedAt,
		})
	}
	return items
}

// headline formats the activity line for each post type. Unknown types
// degrade to a generic activity line rather than erroring.
func headline(post models.FeedPost) string {
	switch post.Type {
	case models.PostTypeFriend:
		return fmt.Sprintf("%s became friends with %s", post.ActorName, post.Data["friendName"])
	case models.PostTypeFollow:
		return fmt.Sprintf("%s started following %s", post.ActorName, post.Data["targetName"])
	case models.PostTypeFavorite:
		return fmt.Sprintf("%s favorited %s", post.ActorName, post.Data["gameId"])
	case models.PostTypeStatus:
		return fmt.Sprintf("%s: %s", post.ActorName, post.Data["text"])
	case models.PostTypeProfile:
		return fmt.Sprintf("%s updated their profile", post.ActorName)
	default:
		return fmt.Sprintf("%s did something", post.ActorName)
	}
}
