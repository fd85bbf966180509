package views

import (
	"testing"

	"satex_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfileView(t *testing.T) {
	profile := &models.UserProfile{
		UserID:         "nova",
		Username:       "Nova",
		Avatar:         "nova.png",
		Banner:         "banner.png",
		Bio:            "Speedrunner.",
		Level:          3,
		XP:             275,
		GamesPlayed:    11,
		FollowersCount: 4,
		FollowingCount: 2,
		FavoriteGames:  []string{"snake"},
		Status:         models.Presence{State: models.PresenceOnline, Game: "snake"},
	}

	vm := BuildProfileView(profile, []models.Game{{ID: "snake"}})
	assert.Equal(t, "Nova", vm.Username)
	assert.Equal(t, 3, vm.Level)
	// XP renders as progress within the current level.
	assert.Equal(t, 75, vm.XPPercent)
	assert.Equal(t, 11, vm.GamesPlayed)
	assert.Equal(t, 4, vm.Followers)
	assert.Equal(t, 2, vm.Following)
	assert.Equal(t, models.PresenceOnline, vm.Presence)
	assert.Equal(t, "snake", vm.CurrentGame)
	assert.Equal(t, []string{"snake"}, vm.Favorites)
}

func TestBuildProfileViewCapsRecentStrip(t *testing.T) {
	recent := []models.Game{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	vm := BuildProfileView(&models.UserProfile{UserID: "nova"}, recent)
	require.Len(t, vm.RecentGames, 3)
	assert.Equal(t, "a", vm.RecentGames[0].ID)
}

func TestBuildProfileViewNilProfile(t *testing.T) {
	vm := BuildProfileView(nil, []models.Game{{ID: "a"}})
	assert.Equal(t, ProfileViewModel{}, vm)
}
