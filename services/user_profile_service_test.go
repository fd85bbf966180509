package services

import (
	"context"
	"fmt"
	"testing"

	"satex_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileNotFound(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}

	_, err := profiles.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetProfileUpgradesLegacyDocument(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	ctx := context.Background()

	// A schema-v1 document, written before avatar/bio/level existed.
	legacy := models.UserProfile{
		UserID:   "nova",
		Username: "Nova",
		EmailID:  "nova@example.com",
	}
	require.NoError(t, dynamo.PutItem(ctx, models.UsersTable, legacy))

	profile, err := profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvatarURL("nova"), profile.Avatar)
	assert.Equal(t, "Just a gamer.", profile.Bio)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, models.PresenceOffline, profile.Status.State)
	assert.Equal(t, models.ProfileSchemaVersion, profile.SchemaVersion)

	// The upgrade was persisted, not just applied in memory.
	item, err := dynamo.GetItem(ctx, models.UsersTable, MarshalKey("userId", "nova"))
	require.NoError(t, err)
	assert.NotNil(t, item["bio"])
}

func TestUpdateProfileFields(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	seedProfile(t, dynamo, "nova", "Nova")
	ctx := context.Background()

	updated, err := profiles.UpdateProfileFields(ctx, "nova", "Speedrunner.", "", "banner.png")
	require.NoError(t, err)
	assert.Equal(t, "Speedrunner.", updated.Bio)
	assert.Equal(t, "banner.png", updated.Banner)
	// Empty avatar left the existing value alone.
	assert.Equal(t, "https://example.com/nova.png", updated.Avatar)
}

func TestUpdateProfileFieldsBioTooLong(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}

	long := make([]byte, BioMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := profiles.UpdateProfileFields(context.Background(), "nova", string(long), "", "")
	assert.ErrorIs(t, err, ErrBioTooLong)
}

func TestUpdateStatus(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	seedProfile(t, dynamo, "nova", "Nova")
	ctx := context.Background()

	profiles.UpdateStatus(ctx, "nova", models.PresenceOnline, "snake")

	profile, err := profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnline, profile.Status.State)
	assert.Equal(t, "snake", profile.Status.Game)
	assert.NotEmpty(t, profile.Status.LastSeen)

	online, err := profiles.GetOnlineUsers(ctx)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "nova", online[0].UserID)
	assert.Empty(t, online[0].PasswordHash)

	profiles.UpdateStatus(ctx, "nova", models.PresenceOffline, "")
	online, err = profiles.GetOnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestChangeUsername(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	auth := &AuthService{Dynamo: dynamo}
	ctx := context.Background()

	nova, _, err := auth.SignUp(ctx, "Nova", "nova@example.com", "pw123456")
	require.NoError(t, err)
	_, _, err = auth.SignUp(ctx, "Zed", "zed@example.com", "pw123456")
	require.NoError(t, err)

	renamed, err := profiles.ChangeUsername(ctx, auth, nova.UserID, "NovaPrime")
	require.NoError(t, err)
	assert.Equal(t, "NovaPrime", renamed.Username)
	assert.Equal(t, "novaprime", renamed.UsernameLower)

	// Renaming onto someone else's handle is refused; renaming onto your
	// own current handle is not.
	_, err = profiles.ChangeUsername(ctx, auth, nova.UserID, "zed")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = profiles.ChangeUsername(ctx, auth, nova.UserID, "NovaPrime")
	assert.NoError(t, err)
}

func TestToggleGameSets(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	seedProfile(t, dynamo, "nova", "Nova")
	ctx := context.Background()

	member, err := profiles.ToggleFavoriteGame(ctx, "nova", "snake", false)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = profiles.ToggleFollowGame(ctx, "nova", "tetris", false)
	require.NoError(t, err)
	assert.True(t, member)

	profile, err := profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, []string{"snake"}, profile.FavoriteGames)
	assert.Equal(t, []string{"tetris"}, profile.FollowingGames)

	member, err = profiles.ToggleFavoriteGame(ctx, "nova", "snake", true)
	require.NoError(t, err)
	assert.False(t, member)

	profile, err = profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Empty(t, profile.FavoriteGames)
	assert.Equal(t, []string{"tetris"}, profile.FollowingGames)
}

func TestFollowGamePostsFavoriteToFeed(t *testing.T) {
	fake, dynamo := newTestDynamo()
	feed := &FeedService{Dynamo: dynamo}
	profiles := &UserProfileService{Dynamo: dynamo, Feed: feed}
	seedProfile(t, dynamo, "nova", "Nova")
	ctx := context.Background()

	member, err := profiles.ToggleFollowGame(ctx, "nova", "snake", false)
	require.NoError(t, err)
	assert.True(t, member)

	posts, err := feed.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostTypeFavorite, posts[0].Type)
	assert.Equal(t, "nova", posts[0].ActorID)
	assert.Equal(t, "Nova", posts[0].ActorName)
	assert.Equal(t, "snake", posts[0].Data["gameId"])

	// Unfollowing announces nothing.
	member, err = profiles.ToggleFollowGame(ctx, "nova", "snake", true)
	require.NoError(t, err)
	assert.False(t, member)
	assert.Equal(t, 1, fake.Count(models.FeedTable))
}

func TestRecordGamePlayed(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	seedProfile(t, dynamo, "nova", "Nova")
	ctx := context.Background()

	require.NoError(t, profiles.RecordGamePlayed(ctx, "nova"))
	require.NoError(t, profiles.RecordGamePlayed(ctx, "nova"))

	profile, err := profiles.GetProfile(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.GamesPlayed)
	assert.Equal(t, 2*xpPerPlay, profile.XP)
}

func TestSearchUsers(t *testing.T) {
	_, dynamo := newTestDynamo()
	profiles := &UserProfileService{Dynamo: dynamo}
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		p := profileFor(fmt.Sprintf("user%d", i), fmt.Sprintf("Nova%d", i))
		p.UsernameLower = fmt.Sprintf("nova%d", i)
		p.PasswordHash = "secret"
		require.NoError(t, dynamo.PutItem(ctx, models.UsersTable, p))
	}
	zed := profileFor("zed", "Zed")
	zed.UsernameLower = "zed"
	require.NoError(t, dynamo.PutItem(ctx, models.UsersTable, zed))

	results, err := profiles.SearchUsers(ctx, "NoVa")
	require.NoError(t, err)
	// Capped at five and never leaking credentials.
	assert.Len(t, results, 5)
	for _, r := range results {
		assert.Empty(t, r.PasswordHash)
	}

	results, err = profiles.SearchUsers(ctx, "zed")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = profiles.SearchUsers(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, results)
}
