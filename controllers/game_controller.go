package controllers

import (
	"encoding/json"
	"net/http"

	"satex_server/services"
)

// GameController serves the static catalog and recent plays.
type GameController struct {
	Games *services.GameService
}

// NewGameController initializes the game controller
func NewGameController(games *services.GameService) *GameController {
	return &GameController{Games: games}
}

// HandleListGames - Full catalog, or filtered by ?q= / ?category=
func (c *GameController) HandleListGames(w http.ResponseWriter, r *http.Request) {
	var games interface{}
	switch {
	case r.URL.Query().Get("q") != "":
		games = c.Games.Search(r.URL.Query().Get("q"))
	case r.URL.Query().Get("category") != "":
		games = c.Games.ByCategory(r.URL.Query().Get("category"))
	default:
		games = c.Games.Games()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(games)
}

// HandleGetTags - Unique tags and categories, sorted
func (c *GameController) HandleGetTags(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c.Games.UniqueTags())
}

// HandleRecentGames - The persisted recently played list
func (c *GameController) HandleRecentGames(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c.Games.RecentGames())
}

// HandleRecordPlay - Push a game onto the recently played list
func (c *GameController) HandleRecordPlay(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.URL == "" {
		http.Error(w, `{"error": "url is required"}`, http.StatusBadRequest)
		return
	}

	c.Games.RecordPlay(payload.URL, payload.Title)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
