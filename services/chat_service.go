package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

var (
	ErrSelfTarget  = errors.New("cannot message yourself")
	ErrRateLimited = errors.New("sending too fast, slow down")
)

// Message history windows: global lobby keeps the newest 50 on screen,
// direct conversations load the last 100.
const (
	GlobalHistoryLimit = 50
	DirectHistoryLimit = 100
)

// ChatService handles the global lobby and direct conversations.
type ChatService struct {
	Dynamo *DynamoService

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// DirectChannelID computes the canonical channel id for two participants:
// the lexicographically sorted pair joined with "_". Both sides compute
// the same id without coordination.
func DirectChannelID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// newMessageID returns a ULID; its lexicographic order is send order.
func newMessageID() string {
	return ulid.Make().String()
}

// allowSend enforces a small per-sender rate limit before any remote
// call: a burst of 5, refilling one message per second.
func (s *ChatService) allowSend(senderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limiters == nil {
		s.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := s.limiters[senderID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 5)
		s.limiters[senderID] = limiter
	}
	return limiter.Allow()
}

// SendGlobalMessage appends one message to the lobby channel. Blank text
// is rejected locally with no network round trip.
func (s *ChatService) SendGlobalMessage(ctx context.Context, sender *models.UserProfile, text string) (*models.Message, error) {
	trimmed, err := ValidateMessage(text)
	if err != nil {
		return nil, err
	}
	if !s.allowSend(sender.UserID) {
		return nil, ErrRateLimited
	}

	message := models.Message{
		ChannelID:  models.GlobalChannelID,
		MessageID:  newMessageID(),
		SenderID:   sender.UserID,
		SenderName: sender.Username,
		Avatar:     sender.Avatar,
		Text:       trimmed,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &message, nil
}

// SendDirectMessage appends the message and updates both sides' thread
// summaries in one transaction: the recipient's unread counter goes up,
// the sender's is zeroed, and the message lands - together or not at all.
func (s *ChatService) SendDirectMessage(ctx context.Context, sender *models.UserProfile, target *models.UserProfile, text string) (*models.Message, error) {
	trimmed, err := ValidateMessage(text)
	if err != nil {
		return nil, err
	}
	if sender.UserID == target.UserID {
		return nil, ErrSelfTarget
	}
	if !s.allowSend(sender.UserID) {
		return nil, ErrRateLimited
	}

	channelID := DirectChannelID(sender.UserID, target.UserID)
	now := time.Now().UTC().Format(time.RFC3339)
	message := models.Message{
		ChannelID:  channelID,
		MessageID:  newMessageID(),
		SenderID:   sender.UserID,
		SenderName: sender.Username,
		Avatar:     sender.Avatar,
		Text:       trimmed,
		CreatedAt:  now,
	}

	messageItem, err := attributevalue.MarshalMap(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	summarySet := "SET peerId = :peerId, peerName = :peerName, peerAvatar = :peerAvatar, lastMessage = :lm, lastSenderId = :ls, updatedAt = :ua"

	senderThread := &types.Update{
		TableName:        aws.String(models.ChatThreadsTable),
		Key:              MarshalPairKey("ownerId", sender.UserID, "channelId", channelID),
		UpdateExpression: aws.String(summarySet + ", unread = :zero"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":peerId":     &types.AttributeValueMemberS{Value: target.UserID},
			":peerName":   &types.AttributeValueMemberS{Value: target.Username},
			":peerAvatar": &types.AttributeValueMemberS{Value: target.Avatar},
			":lm":         &types.AttributeValueMemberS{Value: trimmed},
			":ls":         &types.AttributeValueMemberS{Value: sender.UserID},
			":ua":         &types.AttributeValueMemberS{Value: now},
			":zero":       &types.AttributeValueMemberN{Value: "0"},
		},
	}

	targetThread := &types.Update{
		TableName:        aws.String(models.ChatThreadsTable),
		Key:              MarshalPairKey("ownerId", target.UserID, "channelId", channelID),
		UpdateExpression: aws.String(summarySet + ", unread = if_not_exists(unread, :zero) + :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":peerId":     &types.AttributeValueMemberS{Value: sender.UserID},
			":peerName":   &types.AttributeValueMemberS{Value: sender.Username},
			":peerAvatar": &types.AttributeValueMemberS{Value: sender.Avatar},
			":lm":         &types.AttributeValueMemberS{Value: trimmed},
			":ls":         &types.AttributeValueMemberS{Value: sender.UserID},
			":ua":         &types.AttributeValueMemberS{Value: now},
			":zero":       &types.AttributeValueMemberN{Value: "0"},
			":one":        &types.AttributeValueMemberN{Value: "1"},
		},
	}

	transaction := []types.TransactWriteItem{
		{Put: &types.Put{TableName: aws.String(models.MessagesTable), Item: messageItem}},
		{Update: senderThread},
		{Update: targetThread},
	}
	if err := s.Dynamo.TransactWrite(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to send direct message: %w", err)
	}
	return &message, nil
}

// GetMessages fetches up to limit messages for a channel. latestFirst
// returns the newest messages first (the global lobby reverses them
// before display); ascending order is used for direct transcripts.
func (s *ChatService) GetMessages(ctx context.Context, channelID string, limit int, latestFirst bool) ([]models.Message, error) {
	keyCondition := "channelId = :channelId"
	expressionValues := map[string]types.AttributeValue{
		":channelId": &types.AttributeValueMemberS{Value: channelID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), latestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// GetThreads lists the caller's direct-conversation summaries, most
// recently active first.
func (s *ChatService) GetThreads(ctx context.Context, userID string) ([]models.ChatThread, error) {
	keyCondition := "ownerId = :ownerId"
	expressionValues := map[string]types.AttributeValue{
		":ownerId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.ChatThreadsTable, keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}

	var threads []models.ChatThread
	if err := attributevalue.UnmarshalListOfMaps(items, &threads); err != nil {
		return nil, fmt.Errorf("failed to parse threads: %w", err)
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].UpdatedAt > threads[j].UpdatedAt
	})
	return threads, nil
}

// MarkThreadRead zeroes the viewer's unread counter for a channel.
// Opening a conversation that has no thread yet is a quiet no-op.
func (s *ChatService) MarkThreadRead(ctx context.Context, userID, channelID string) error {
	updateExpression := "SET unread = :zero"
	conditionExpression := "attribute_exists(ownerId)"
	expressionValues := map[string]types.AttributeValue{
		":zero": &types.AttributeValueMemberN{Value: "0"},
	}

	err := s.Dynamo.UpdateItemConditional(ctx, models.ChatThreadsTable, updateExpression, conditionExpression, MarshalPairKey("ownerId", userID, "channelId", channelID), expressionValues, nil)
	if errors.Is(err, ErrConditionFailed) {
		return nil
	}
	if err != nil {
		log.Printf("failed to mark thread %s read for %s: %v", channelID, userID, err)
	}
	return err
}
