package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"satex_server/models"
	"satex_server/services"
)

// FeedController handles the social activity feed.
type FeedController struct {
	Feed     *services.FeedService
	Profiles *services.UserProfileService
}

// NewFeedController initializes the feed controller
func NewFeedController(feed *services.FeedService, profiles *services.UserProfileService) *FeedController {
	return &FeedController{Feed: feed, Profiles: profiles}
}

// HandleGetFeed - The bounded newest-first activity window
func (c *FeedController) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := c.Feed.GetFeed(r.Context())
	if err != nil {
		log.Printf("❌ Failed to fetch feed: %v", err)
		http.Error(w, `{"error": "Failed to fetch feed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// HandlePostStatus - Publish a status post from the caller
func (c *FeedController) HandlePostStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := services.ValidateStatusText(payload.Text); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	actor, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}

	if err := c.Feed.PostActivity(r.Context(), actor, models.PostTypeStatus, map[string]string{"text": payload.Text}); err != nil {
		http.Error(w, `{"error": "Failed to post"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleToggleLike - Idempotent like toggle; responds with the resulting state
func (c *FeedController) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PostID string `json:"postId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.PostID == "" {
		http.Error(w, `{"error": "postId is required"}`, http.StatusBadRequest)
		return
	}

	liked, err := c.Feed.ToggleLike(r.Context(), UserID(r), payload.PostID)
	if err != nil {
		log.Printf("❌ Like toggle failed for %s: %v", payload.PostID, err)
		http.Error(w, `{"error": "Failed to toggle like"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"liked": liked})
}
