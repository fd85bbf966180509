package models

// Game is one entry of the static catalog (games.json).
type Game struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	URL       string   `json:"url"`
	Thumbnail string   `json:"thumbnail"`
	Tags      []string `json:"tags"`
}
