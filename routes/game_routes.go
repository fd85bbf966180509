package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterGameRoutes sets up catalog routes under /api/games
func RegisterGameRoutes(r *mux.Router, games *services.GameService) {
	controller := controllers.NewGameController(games)

	gameRouter := r.PathPrefix("/api/games").Subrouter()
	gameRouter.HandleFunc("", controller.HandleListGames).Methods("GET")
	gameRouter.HandleFunc("/tags", controller.HandleGetTags).Methods("GET")
	gameRouter.HandleFunc("/recent", controller.HandleRecentGames).Methods("GET")
	gameRouter.HandleFunc("/recent", controller.HandleRecordPlay).Methods("POST")
}
