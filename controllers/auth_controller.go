package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"satex_server/services"
)

// AuthController handles sign-up, sign-in and sign-out.
type AuthController struct {
	Session *services.SessionService
}

// NewAuthController initializes the auth controller
func NewAuthController(session *services.SessionService) *AuthController {
	return &AuthController{Session: session}
}

// HandleSignUp - Create an account and establish the session
func (c *AuthController) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		http.Error(w, `{"error": "Missing required fields: username, email, or password"}`, http.StatusBadRequest)
		return
	}

	log.Printf("📝 Sign-up request for username: %s", payload.Username)

	token, err := c.Session.SignUp(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"profile": c.Session.Profile(),
	})
}

// HandleSignIn - Authenticate and establish the session
func (c *AuthController) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		http.Error(w, `{"error": "Missing required fields: email or password"}`, http.StatusBadRequest)
		return
	}

	token, err := c.Session.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	log.Printf("🔓 Signed in: %s", payload.Email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"profile": c.Session.Profile(),
	})
}

// HandleSignOut - Tear the session down
func (c *AuthController) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	c.Session.SignOut(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleSession - Current identity, or null when signed out. The cached
// display name from the last sign-in rides along so the sign-in screen
// can greet returning visitors.
func (c *AuthController) HandleSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"identity":          c.Session.Identity(),
		"cachedDisplayName": c.Session.CachedDisplayName(),
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailRegistered):
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, `{"error": "Invalid email or password"}`, http.StatusUnauthorized)
	case errors.Is(err, services.ErrHandleLength), errors.Is(err, services.ErrHandleCharset):
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
	default:
		log.Printf("❌ Auth error: %v", err)
		http.Error(w, `{"error": "Authentication failed"}`, http.StatusInternalServerError)
	}
}
