package services

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"satex_server/models"
	"satex_server/utils"
)

const (
	recentGamesKey = "satex_recent"
	recentGamesMax = 20
	newGamesWindow = 15
)

// fallbackGames keeps the portal usable when games.json is missing or
// malformed.
var fallbackGames = []models.Game{
	{
		ID:        "snake",
		Title:     "Snake Evolution",
		Category:  "Action",
		URL:       "games/snake/index.html",
		Thumbnail: "assets/thumbnails/snake.jpg",
		Tags:      []string{"action", "classic", "snake"},
	},
}

// GameService serves the static catalog: load, search, tag extraction
// and the recently-played list persisted through the local store.
type GameService struct {
	Store *utils.LocalStore

	mu    sync.RWMutex
	games []models.Game
}

// LoadCatalog reads games.json (path from GAMES_FILE, default
// "games.json") and falls back to the built-in entry on any failure.
func (gs *GameService) LoadCatalog() {
	path := os.Getenv("GAMES_FILE")
	if path == "" {
		path = "games.json"
	}

	games := fallbackGames
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ games catalog %s not found, using fallback: %v", path, err)
	} else if err := json.Unmarshal(data, &games); err != nil {
		log.Printf("⚠️ games catalog %s unreadable, using fallback: %v", path, err)
		games = fallbackGames
	} else {
		log.Printf("🎮 Loaded %d games from %s", len(games), path)
	}

	gs.mu.Lock()
	gs.games = games
	gs.mu.Unlock()
}

// Games returns the full catalog.
func (gs *GameService) Games() []models.Game {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	out := make([]models.Game, len(gs.games))
	copy(out, gs.games)
	return out
}

// Find resolves a game by id or case-insensitive title, the same lookup
// used for the ?game= query parameter. Returns nil when unknown.
func (gs *GameService) Find(idOrTitle string) *models.Game {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	lower := strings.ToLower(idOrTitle)
	for i := range gs.games {
		if gs.games[i].ID == idOrTitle || strings.ToLower(gs.games[i].Title) == lower {
			game := gs.games[i]
			return &game
		}
	}
	return nil
}

// Search filters the catalog by substring match against title, category
// and tags. An empty query returns everything.
func (gs *GameService) Search(query string) []models.Game {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return gs.Games()
	}

	gs.mu.RLock()
	defer gs.mu.RUnlock()
	var results []models.Game
	for _, game := range gs.games {
		if strings.Contains(strings.ToLower(game.Title), query) ||
			strings.Contains(strings.ToLower(game.Category), query) {
			results = append(results, game)
			continue
		}
		for _, tag := range game.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				results = append(results, game)
				break
			}
		}
	}
	return results
}

// ByCategory filters the catalog; "All" returns everything.
func (gs *GameService) ByCategory(category string) []models.Game {
	if category == "" || category == "All" {
		return gs.Games()
	}
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	var results []models.Game
	for _, game := range gs.games {
		if game.Category == category {
			results = append(results, game)
		}
	}
	return results
}

// UniqueTags returns every tag and category, lowercased and sorted.
func (gs *GameService) UniqueTags() []string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	seen := map[string]bool{}
	for _, game := range gs.games {
		for _, tag := range game.Tags {
			seen[strings.ToLower(tag)] = true
		}
		if game.Category != "" {
			seen[strings.ToLower(game.Category)] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// NewGames returns the newest window of the catalog, last entries first.
func (gs *GameService) NewGames() []models.Game {
	all := gs.Games()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > newGamesWindow {
		all = all[:newGamesWindow]
	}
	return all
}

// RecentGames returns the persisted recently-played list, newest first.
func (gs *GameService) RecentGames() []models.Game {
	var recent []models.Game
	if err := gs.Store.Get(recentGamesKey, &recent); err != nil {
		if err != utils.ErrKeyNotFound {
			log.Printf("recent games load failed: %v", err)
		}
		return nil
	}
	return recent
}

// RecordPlay moves the game to the top of the recently-played list,
// keeping at most 20 entries. Unknown URLs get a minimal entry.
func (gs *GameService) RecordPlay(gameURL, title string) {
	recent := gs.RecentGames()
	filtered := recent[:0]
	for _, g := range recent {
		if g.URL != gameURL {
			filtered = append(filtered, g)
		}
	}

	entry := models.Game{Title: title, URL: gameURL, Category: "Arcade"}
	gs.mu.RLock()
	for _, g := range gs.games {
		if g.URL == gameURL {
			entry = g
			break
		}
	}
	gs.mu.RUnlock()

	recent = append([]models.Game{entry}, filtered...)
	if len(recent) > recentGamesMax {
		recent = recent[:recentGamesMax]
	}
	if err := gs.Store.Set(recentGamesKey, recent); err != nil {
		log.Printf("recent games save failed: %v", err)
	}
}
