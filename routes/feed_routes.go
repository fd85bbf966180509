package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterFeedRoutes sets up activity feed routes under /api/feed
func RegisterFeedRoutes(r *mux.Router, feed *services.FeedService, profiles *services.UserProfileService, auth *services.AuthService) {
	controller := controllers.NewFeedController(feed, profiles)

	feedRouter := r.PathPrefix("/api/feed").Subrouter()
	feedRouter.Use(authMiddleware(auth))

	feedRouter.HandleFunc("", controller.HandleGetFeed).Methods("GET")
	feedRouter.HandleFunc("/status", controller.HandlePostStatus).Methods("POST")
	feedRouter.HandleFunc("/like", controller.HandleToggleLike).Methods("POST")
}
