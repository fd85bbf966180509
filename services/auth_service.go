package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username taken")
	ErrEmailRegistered    = errors.New("email already registered")
)

// AuthService handles account creation and sign-in against the Users
// table. Handle uniqueness is a pre-check query, not a serializable
// guarantee: two concurrent signups can both pass it. That matches the
// original portal behavior and is documented as accepted.
type AuthService struct {
	Dynamo *DynamoService
}

const tokenLifetime = 24 * time.Hour

// SignUp validates the desired handle locally, pre-checks uniqueness,
// then creates the account document with profile defaults.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*models.UserProfile, string, error) {
	if err := ValidateHandle(username); err != nil {
		return nil, "", err
	}

	taken, err := s.handleInUse(ctx, NormalizeHandle(username), "")
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	if existing, err := s.lookupByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	userID := uuid.New().String()
	profile := models.UserProfile{
		UserID:        userID,
		Username:      username,
		UsernameLower: NormalizeHandle(username),
		EmailID:       email,
		PasswordHash:  string(hash),
		Avatar:        models.DefaultAvatarURL(userID),
		Bio:           "Just a gamer.",
		Level:         1,
		Status:        models.Presence{State: models.PresenceOffline},
		Joined:        time.Now().UTC().Format(time.RFC3339),
		SchemaVersion: models.ProfileSchemaVersion,
	}

	if err := s.Dynamo.PutItem(ctx, models.UsersTable, profile); err != nil {
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.generateToken(&profile)
	if err != nil {
		return nil, "", err
	}

	log.Printf("account created: %s (%s)", username, userID)
	return &profile, token, nil
}

// SignIn resolves the account by email and verifies the password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	profile, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(profile)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// handleInUse reports whether the normalized handle belongs to an
// account other than excludeUserID. Advisory only (see type comment).
func (s *AuthService) handleInUse(ctx context.Context, normalized, excludeUserID string) (bool, error) {
	keyCondition := "usernameLower = :u"
	expressionValues := map[string]types.AttributeValue{
		":u": &types.AttributeValueMemberS{Value: normalized},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.UsersTable, models.UsernameLowerIndex, keyCondition, expressionValues, nil, 5)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		var p models.UserProfile
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			continue
		}
		if p.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *AuthService) lookupByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	keyCondition := "emailId = :e"
	expressionValues := map[string]types.AttributeValue{
		":e": &types.AttributeValueMemberS{Value: email},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.UsersTable, models.EmailIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(items[0], &profile); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return &profile, nil
}

func (s *AuthService) generateToken(profile *models.UserProfile) (string, error) {
	claims := jwt.MapClaims{
		"sub":  profile.UserID,
		"name": profile.Username,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ValidateToken parses a bearer token and returns the user id it names.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}
