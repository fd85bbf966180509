package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"satex_server/services"
)

// SocialController handles friend requests and follow edges.
type SocialController struct {
	Friends  *services.FriendService
	Profiles *services.UserProfileService
}

// NewSocialController initializes the social controller
func NewSocialController(friends *services.FriendService, profiles *services.UserProfileService) *SocialController {
	return &SocialController{Friends: friends, Profiles: profiles}
}

// HandleGetFriends - The caller's friend list
func (c *SocialController) HandleGetFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := c.Friends.GetFriends(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Failed to fetch friends"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(friends)
}

// HandleGetRequests - Pending incoming friend requests
func (c *SocialController) HandleGetRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := c.Friends.GetRequests(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Failed to fetch requests"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// HandleSendRequest - Send a friend request
func (c *SocialController) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TargetID == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	me, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}

	log.Printf("🤝 Friend request: %s -> %s", me.Username, payload.TargetID)

	if err := c.Friends.SendFriendRequest(r.Context(), me, payload.TargetID); err != nil {
		writeSocialError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleAcceptRequest - Accept a pending request atomically
func (c *SocialController) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FromID string `json:"fromId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FromID == "" {
		http.Error(w, `{"error": "fromId is required"}`, http.StatusBadRequest)
		return
	}

	me, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}

	if err := c.Friends.AcceptFriendRequest(r.Context(), me, payload.FromID); err != nil {
		writeSocialError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleDeclineRequest - Drop a pending request
func (c *SocialController) HandleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FromID string `json:"fromId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FromID == "" {
		http.Error(w, `{"error": "fromId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Friends.DeclineFriendRequest(r.Context(), UserID(r), payload.FromID); err != nil {
		http.Error(w, `{"error": "Failed to decline request"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleFollow - Follow another user (idempotent)
func (c *SocialController) HandleFollow(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TargetID == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	me, err := c.Profiles.GetProfile(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
		return
	}
	target, err := c.Profiles.GetProfile(r.Context(), payload.TargetID)
	if err != nil {
		http.Error(w, `{"error": "Target not found"}`, http.StatusNotFound)
		return
	}

	if err := c.Friends.Follow(r.Context(), me, target); err != nil {
		writeSocialError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleUnfollow - Remove a follow edge (idempotent, counters never go negative)
func (c *SocialController) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TargetID == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Friends.Unfollow(r.Context(), UserID(r), payload.TargetID); err != nil {
		http.Error(w, `{"error": "Failed to unfollow"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleGetFollowing - Who the caller follows
func (c *SocialController) HandleGetFollowing(w http.ResponseWriter, r *http.Request) {
	following, err := c.Friends.GetFollowing(r.Context(), UserID(r))
	if err != nil {
		http.Error(w, `{"error": "Failed to fetch following"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(following)
}

func writeSocialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSelfFriend), errors.Is(err, services.ErrSelfTarget):
		http.Error(w, `{"error": "Cannot target yourself"}`, http.StatusBadRequest)
	case errors.Is(err, services.ErrAlreadyFriends), errors.Is(err, services.ErrRequestPending), errors.Is(err, services.ErrRequestedYou):
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusConflict)
	case errors.Is(err, services.ErrRequestNotFound):
		http.Error(w, `{"error": "Request not found"}`, http.StatusNotFound)
	default:
		log.Printf("❌ Social operation failed: %v", err)
		http.Error(w, `{"error": "Operation failed"}`, http.StatusInternalServerError)
	}
}
