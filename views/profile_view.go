package views

import (
	"satex_server/models"
)

const xpPerLevel = 100

// ProfileViewModel is the rendered profile panel: identity, stats, the
// XP bar and the recently played strip.
type ProfileViewModel struct {
	UserID      string
	Username    string
	Avatar      string
	Banner      string
	Bio         string
	Level       int
	XPPercent   int
	GamesPlayed int
	Followers   int
	Following   int
	Presence    string
	CurrentGame string
	Favorites   []string
	RecentGames []models.Game
}

// BuildProfileView computes the profile panel from a profile snapshot
// and the recently played list. Nil profile means signed out; the
// caller should not render the panel at all in that case.
func BuildProfileView(profile *models.UserProfile, recent []models.Game) ProfileViewModel {
	if profile == nil {
		return ProfileViewModel{}
	}
	if len(recent) > 3 {
		recent = recent[:3]
	}
	return ProfileViewModel{
		UserID:      profile.UserID,
		Username:    profile.Username,
		Avatar:      profile.Avatar,
		Banner:      profile.Banner,
		Bio:         profile.Bio,
		Level:       profile.Level,
		XPPercent:   profile.XP % xpPerLevel,
		GamesPlayed: profile.GamesPlayed,
		Followers:   profile.FollowersCount,
		Following:   profile.FollowingCount,
		Presence:    profile.Status.State,
		CurrentGame: profile.Status.Game,
		Favorites:   profile.FavoriteGames,
		RecentGames: recent,
	}
}
