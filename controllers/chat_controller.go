package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"satex_server/services"
)

// ChatController handles global and direct chat endpoints.
type ChatController struct {
	Chat     *services.ChatService
	Profiles *services.UserProfileService
	Session  *services.SessionService
}

// NewChatController initializes the chat controller
func NewChatController(chat *services.ChatService, profiles *services.UserProfileService, session *services.SessionService) *ChatController {
	return &ChatController{Chat: chat, Profiles: profiles, Session: session}
}

// HandleSendGlobal - Append a message to the global channel
func (c *ChatController) HandleSendGlobal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	sender, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}

	message, err := c.Chat.SendGlobalMessage(r.Context(), sender, payload.Text)
	if err != nil {
		writeChatError(w, err)
		return
	}

	log.Printf("📩 Global message from %s", sender.Username)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}

// HandleSendDirect - Send a direct message and upsert both thread summaries
func (c *ChatController) HandleSendDirect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if payload.TargetID == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	sender, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}
	target, err := c.Profiles.GetProfile(r.Context(), payload.TargetID)
	if err != nil {
		http.Error(w, `{"error": "Target not found"}`, http.StatusNotFound)
		return
	}

	message, err := c.Chat.SendDirectMessage(r.Context(), sender, target, payload.Text)
	if err != nil {
		writeChatError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}

// HandleGetMessages - Fetch bounded history for a channel
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channelId")
	if channelID == "" {
		http.Error(w, `{"error": "channelId is required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.GlobalHistoryLimit
	}
	latestFirst := r.URL.Query().Get("order") != "asc"

	messages, err := c.Chat.GetMessages(r.Context(), channelID, limit, latestFirst)
	if err != nil {
		log.Printf("❌ Error fetching messages for %s: %v", channelID, err)
		http.Error(w, `{"error": "Failed to fetch messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// HandleGetThreads - List the caller's DM threads, most recent first
func (c *ChatController) HandleGetThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := c.Chat.GetThreads(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Failed to fetch threads"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(threads)
}

// HandleOpenDirect - Open a direct conversation (zeroes unread, starts the watcher)
func (c *ChatController) HandleOpenDirect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TargetID == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	// The session marks read and subscribes as its own identity, so the
	// returned channel id is computed from that same identity.
	identity := c.Session.Identity()
	if identity == nil {
		http.Error(w, `{"error": "No active session"}`, http.StatusUnauthorized)
		return
	}

	if err := c.Session.OpenDirectChat(r.Context(), payload.TargetID); err != nil {
		http.Error(w, `{"error": "Failed to open conversation"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "success",
		"channelId": services.DirectChannelID(identity.UserID, payload.TargetID),
	})
}

// HandleCloseDirect - Leave direct mode
func (c *ChatController) HandleCloseDirect(w http.ResponseWriter, r *http.Request) {
	c.Session.CloseDirectChat()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleMarkRead - Zero the caller's unread counter for a channel
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChannelID string `json:"channelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ChannelID == "" {
		http.Error(w, `{"error": "channelId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Chat.MarkThreadRead(r.Context(), UserID(r), payload.ChannelID); err != nil {
		http.Error(w, `{"error": "Failed to mark thread as read"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong), errors.Is(err, services.ErrSelfTarget):
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, services.ErrRateLimited):
		http.Error(w, `{"error": "Slow down"}`, http.StatusTooManyRequests)
	default:
		log.Printf("❌ Failed to send message: %v", err)
		http.Error(w, `{"error": "Failed to send message"}`, http.StatusInternalServerError)
	}
}
