package models

import "fmt"

// UserProfile is the user document stored in the Users table.
// Feed posts and friend edges copy name/avatar from here at write time, so
// renders never need a join back to this table.
type UserProfile struct {
	UserID         string   `dynamodbav:"userId" json:"userId"` // Partition Key (PK)
	Username       string   `dynamodbav:"username" json:"username"`
	UsernameLower  string   `dynamodbav:"usernameLower" json:"usernameLower"` // GSI key for uniqueness lookups
	EmailID        string   `dynamodbav:"emailId" json:"emailId"`
	PasswordHash   string   `dynamodbav:"passwordHash" json:"-"`
	Avatar         string   `dynamodbav:"avatar" json:"avatar"`
	Banner         string   `dynamodbav:"banner,omitempty" json:"banner,omitempty"`
	Bio            string   `dynamodbav:"bio" json:"bio"`
	Level          int      `dynamodbav:"level" json:"level"`
	XP             int      `dynamodbav:"xp" json:"xp"`
	GamesPlayed    int      `dynamodbav:"gamesPlayed" json:"gamesPlayed"`
	FollowersCount int      `dynamodbav:"followersCount" json:"followersCount"`
	FollowingCount int      `dynamodbav:"followingCount" json:"followingCount"`
	FollowingGames []string `dynamodbav:"followingGames,stringset,omitempty" json:"followingGames,omitempty"`
	FavoriteGames  []string `dynamodbav:"favoriteGames,stringset,omitempty" json:"favoriteGames,omitempty"`
	Status         Presence `dynamodbav:"status" json:"status"`
	Joined         string   `dynamodbav:"joined" json:"joined"`
	SchemaVersion  int      `dynamodbav:"schemaVersion" json:"schemaVersion"`
}

// Presence is the best-effort online state embedded in the profile.
type Presence struct {
	State    string `dynamodbav:"state" json:"state"` // online, away, offline
	Game     string `dynamodbav:"game,omitempty" json:"game,omitempty"`
	LastSeen string `dynamodbav:"lastSeen,omitempty" json:"lastSeen,omitempty"`
}

// UsersTable is the DynamoDB table name for user profiles
const UsersTable = "Users"

// UsernameLowerIndex is the GSI used for handle-uniqueness lookups
const UsernameLowerIndex = "usernameLower-index"

// EmailIndex is the GSI used to resolve accounts at sign-in
const EmailIndex = "emailId-index"

// ProfileSchemaVersion is the current profile document layout version.
// Upgrade() brings older documents up to this version in one pass.
const ProfileSchemaVersion = 2

// DefaultAvatarURL returns the generated avatar for a new account.
func DefaultAvatarURL(userID string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/bottts/svg?seed=%s", userID)
}

// Upgrade backfills fields added after the profile document was first
// written and stamps the current schema version. It returns true when the
// document changed and needs to be persisted.
func (p *UserProfile) Upgrade() bool {
	if p.SchemaVersion >= ProfileSchemaVersion {
		return false
	}
	if p.Avatar == "" {
		p.Avatar = DefaultAvatarURL(p.UserID)
	}
	if p.Bio == "" {
		p.Bio = "Just a gamer."
	}
	if p.Level == 0 {
		p.Level = 1
	}
	if p.Status.State == "" {
		p.Status.State = PresenceOffline
	}
	p.SchemaVersion = ProfileSchemaVersion
	return true
}
