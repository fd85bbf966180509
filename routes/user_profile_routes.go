package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, profiles *services.UserProfileService, auth *services.AuthService) {
	controller := controllers.NewUserProfileController(profiles, auth)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()
	profileRouter.Use(authMiddleware(auth))

	profileRouter.HandleFunc("/me", controller.UpdateUserProfile).Methods("PATCH")
	profileRouter.HandleFunc("/me/username", controller.ChangeUsername).Methods("PATCH")
	profileRouter.HandleFunc("/me/status", controller.UpdateStatus).Methods("PUT")
	profileRouter.HandleFunc("/me/games", controller.ToggleGame).Methods("POST")
	profileRouter.HandleFunc("/me/played", controller.RecordGamePlayed).Methods("POST")
	profileRouter.HandleFunc("/search", controller.SearchUsers).Methods("GET")
	profileRouter.HandleFunc("/online", controller.GetOnlineUsers).Methods("GET")
	profileRouter.HandleFunc("/{userId}", controller.GetUserProfile).Methods("GET")
}
