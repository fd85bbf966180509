package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrProfileNotFound = errors.New("profile not found")

type UserProfileService struct {
	Dynamo *DynamoService
	Feed   *FeedService
}

// xpPerPlay is awarded each time a game session is recorded.
const xpPerPlay = 25

// GetProfile loads a profile and applies the schema upgrade once. An
// upgraded document is written back immediately so later readers see the
// fully-populated record.
func (ups *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := ups.Dynamo.GetItem(ctx, models.UsersTable, MarshalKey("userId", userID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if profile.Upgrade() {
		if err := ups.Dynamo.PutItem(ctx, models.UsersTable, profile); err != nil {
			log.Printf("profile schema upgrade write failed for %s: %v", userID, err)
		}
	}
	return &profile, nil
}

// UpdateProfileFields applies the editable profile fields after local
// validation. Empty strings leave a field untouched.
func (ups *UserProfileService) UpdateProfileFields(ctx context.Context, userID, bio, avatar, banner string) (*models.UserProfile, error) {
	if err := ValidateBio(bio); err != nil {
		return nil, err
	}

	updateExpression := ""
	expressionValues := map[string]types.AttributeValue{}
	expressionNames := map[string]string{}

	appendSet := func(name, attr, value string) {
		if value == "" {
			return
		}
		if updateExpression == "" {
			updateExpression = "SET "
		} else {
			updateExpression += ", "
		}
		updateExpression += name + " = :" + attr
		expressionNames[name] = attr
		expressionValues[":"+attr] = &types.AttributeValueMemberS{Value: value}
	}
	appendSet("#bio", "bio", bio)
	appendSet("#avatar", "avatar", avatar)
	appendSet("#banner", "banner", banner)

	if updateExpression == "" {
		return ups.GetProfile(ctx, userID)
	}

	attrs, err := ups.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, MarshalKey("userId", userID), expressionValues, expressionNames)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse updated profile: %w", err)
	}
	return &profile, nil
}

// UpdateStatus writes the presence document on a fire-and-forget basis.
// If the guarded update rejects (document missing), it falls back to an
// upsert. Failures are logged, never returned: presence is not
// safety-critical.
func (ups *UserProfileService) UpdateStatus(ctx context.Context, userID, state, game string) {
	now := time.Now().UTC().Format(time.RFC3339)
	updateExpression := "SET #st = :status"
	conditionExpression := "attribute_exists(userId)"
	expressionValues := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"state":    &types.AttributeValueMemberS{Value: state},
			"game":     &types.AttributeValueMemberS{Value: game},
			"lastSeen": &types.AttributeValueMemberS{Value: now},
		}},
	}
	expressionNames := map[string]string{"#st": "status"}

	err := ups.Dynamo.UpdateItemConditional(ctx, models.UsersTable, updateExpression, conditionExpression, MarshalKey("userId", userID), expressionValues, expressionNames)
	if err == nil {
		return
	}
	if errors.Is(err, ErrConditionFailed) {
		upsert := models.UserProfile{
			UserID: userID,
			Status: models.Presence{State: state, Game: game, LastSeen: now},
		}
		if putErr := ups.Dynamo.PutItem(ctx, models.UsersTable, upsert); putErr != nil {
			log.Printf("status upsert failed for %s: %v", userID, putErr)
		}
		return
	}
	log.Printf("status update failed for %s: %v", userID, err)
}

// ChangeUsername renames the account after an advisory uniqueness check
// that excludes the caller's own record. Two concurrent renames to the
// same handle can both pass the check; the original portal accepts that.
func (ups *UserProfileService) ChangeUsername(ctx context.Context, auth *AuthService, userID, newUsername string) (*models.UserProfile, error) {
	if err := ValidateHandle(newUsername); err != nil {
		return nil, err
	}

	normalized := NormalizeHandle(newUsername)
	taken, err := auth.handleInUse(ctx, normalized, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	updateExpression := "SET username = :u, usernameLower = :ul"
	expressionValues := map[string]types.AttributeValue{
		":u":  &types.AttributeValueMemberS{Value: newUsername},
		":ul": &types.AttributeValueMemberS{Value: normalized},
	}
	attrs, err := ups.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, MarshalKey("userId", userID), expressionValues, nil)
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse renamed profile: %w", err)
	}
	return &profile, nil
}

// ToggleFollowGame adds or removes a game from the followed set. The set
// mutation is a single atomic ADD/DELETE on the string set. Newly
// following a game announces it on the activity feed, best effort.
// Returns the new membership state.
func (ups *UserProfileService) ToggleFollowGame(ctx context.Context, userID, gameID string, following bool) (bool, error) {
	member, err := ups.toggleGameSet(ctx, userID, gameID, "followingGames", following)
	if err != nil || !member {
		return member, err
	}
	if ups.Feed != nil {
		actor, loadErr := ups.GetProfile(ctx, userID)
		if loadErr != nil {
			log.Printf("profile load for follow-game feed post failed: %v", loadErr)
			return member, nil
		}
		if postErr := ups.Feed.PostActivity(ctx, actor, models.PostTypeFavorite, map[string]string{
			"gameId": gameID,
		}); postErr != nil {
			log.Printf("feed post after game follow failed: %v", postErr)
		}
	}
	return member, nil
}

// ToggleFavoriteGame adds or removes a game from the favorites set.
func (ups *UserProfileService) ToggleFavoriteGame(ctx context.Context, userID, gameID string, favorited bool) (bool, error) {
	return ups.toggleGameSet(ctx, userID, gameID, "favoriteGames", favorited)
}

func (ups *UserProfileService) toggleGameSet(ctx context.Context, userID, gameID, attr string, member bool) (bool, error) {
	verb := "ADD"
	if member {
		verb = "DELETE"
	}
	updateExpression := verb + " #g :game"
	expressionValues := map[string]types.AttributeValue{
		":game": &types.AttributeValueMemberSS{Value: []string{gameID}},
	}
	expressionNames := map[string]string{"#g": attr}

	_, err := ups.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, MarshalKey("userId", userID), expressionValues, expressionNames)
	if err != nil {
		return member, err
	}
	return !member, nil
}

// RecordGamePlayed bumps the play counter and awards XP.
func (ups *UserProfileService) RecordGamePlayed(ctx context.Context, userID string) error {
	updateExpression := "ADD gamesPlayed :one, xp :xp"
	expressionValues := map[string]types.AttributeValue{
		":one": &types.AttributeValueMemberN{Value: "1"},
		":xp":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", xpPerPlay)},
	}
	_, err := ups.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, MarshalKey("userId", userID), expressionValues, nil)
	return err
}

// SearchUsers finds up to five profiles whose handle starts with the
// term. Backed by a filtered scan; search volume is tiny.
func (ups *UserProfileService) SearchUsers(ctx context.Context, term string) ([]models.UserProfile, error) {
	term = NormalizeHandle(term)
	if term == "" {
		return nil, nil
	}

	filterExpression := "begins_with(usernameLower, :term)"
	expressionValues := map[string]types.AttributeValue{
		":term": &types.AttributeValueMemberS{Value: term},
	}

	items, err := ups.Dynamo.ScanItems(ctx, models.UsersTable, filterExpression, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	var users []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	if len(users) > 5 {
		users = users[:5]
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// GetOnlineUsers lists profiles currently marked online.
func (ups *UserProfileService) GetOnlineUsers(ctx context.Context) ([]models.UserProfile, error) {
	filterExpression := "#st.#state = :online"
	expressionValues := map[string]types.AttributeValue{
		":online": &types.AttributeValueMemberS{Value: models.PresenceOnline},
	}
	expressionNames := map[string]string{"#st": "status", "#state": "state"}

	items, err := ups.Dynamo.ScanItems(ctx, models.UsersTable, filterExpression, expressionValues, expressionNames, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list online users: %w", err)
	}

	var users []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to parse online users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
