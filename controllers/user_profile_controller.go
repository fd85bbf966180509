package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"satex_server/services"

	"github.com/gorilla/mux"
)

// UserProfileController handles requests related to user profiles
type UserProfileController struct {
	Profiles *services.UserProfileService
	Auth     *services.AuthService
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(profiles *services.UserProfileService, auth *services.AuthService) *UserProfileController {
	return &UserProfileController{Profiles: profiles, Auth: auth}
}

// GetUserProfile - Fetch a profile by userId (schema upgrade applies on read)
func (c *UserProfileController) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile, err := c.Profiles.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to fetch profile %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// UpdateUserProfile - Update the caller's bio, avatar or banner
func (c *UserProfileController) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
		Banner string `json:"banner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	profile, err := c.Profiles.UpdateProfileFields(r.Context(), UserID(r), payload.Bio, payload.Avatar, payload.Banner)
	if err != nil {
		if errors.Is(err, services.ErrBioTooLong) {
			http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		log.Printf("❌ Failed to update profile: %v", err)
		http.Error(w, `{"error": "Failed to update profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// ChangeUsername - Rename the caller (advisory uniqueness check)
func (c *UserProfileController) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" {
		http.Error(w, `{"error": "username is required"}`, http.StatusBadRequest)
		return
	}

	profile, err := c.Profiles.ChangeUsername(r.Context(), c.Auth, UserID(r), payload.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			http.Error(w, `{"error": "Username already taken"}`, http.StatusConflict)
		case errors.Is(err, services.ErrHandleLength), errors.Is(err, services.ErrHandleCharset):
			http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"error": "Failed to change username"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// UpdateStatus - Best-effort presence write (online/away/offline + game)
func (c *UserProfileController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		State string `json:"state"`
		Game  string `json:"game"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	// Fire and forget; presence failures are logged inside the service.
	c.Profiles.UpdateStatus(r.Context(), UserID(r), payload.State, payload.Game)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// ToggleGame - Flip a game in the caller's following or favorite set
func (c *UserProfileController) ToggleGame(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GameID string `json:"gameId"`
		Kind   string `json:"kind"` // "following" or "favorite"
		On     bool   `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.GameID == "" {
		http.Error(w, `{"error": "gameId is required"}`, http.StatusBadRequest)
		return
	}

	var (
		member bool
		err    error
	)
	if payload.Kind == "favorite" {
		member, err = c.Profiles.ToggleFavoriteGame(r.Context(), UserID(r), payload.GameID, payload.On)
	} else {
		member, err = c.Profiles.ToggleFollowGame(r.Context(), UserID(r), payload.GameID, payload.On)
	}
	if err != nil {
		log.Printf("❌ Failed to toggle game set: %v", err)
		http.Error(w, `{"error": "Failed to update game list"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"member": member})
}

// RecordGamePlayed - Bump play count and XP for the caller
func (c *UserProfileController) RecordGamePlayed(w http.ResponseWriter, r *http.Request) {
	if err := c.Profiles.RecordGamePlayed(r.Context(), UserID(r)); err != nil {
		http.Error(w, `{"error": "Failed to record play"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// SearchUsers - Prefix search on handles, capped at 5 results
func (c *UserProfileController) SearchUsers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, `{"error": "q is required"}`, http.StatusBadRequest)
		return
	}

	users, err := c.Profiles.SearchUsers(r.Context(), term)
	if err != nil {
		http.Error(w, `{"error": "Search failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// GetOnlineUsers - Everyone currently marked online
func (c *UserProfileController) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Profiles.GetOnlineUsers(r.Context())
	if err != nil {
		http.Error(w, `{"error": "Failed to fetch online users"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
