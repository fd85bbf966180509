package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterSocialRoutes sets up friend/follow routes under /api/social
func RegisterSocialRoutes(r *mux.Router, friends *services.FriendService, profiles *services.UserProfileService, auth *services.AuthService) {
	controller := controllers.NewSocialController(friends, profiles)

	socialRouter := r.PathPrefix("/api/social").Subrouter()
	socialRouter.Use(authMiddleware(auth))

	socialRouter.HandleFunc("/friends", controller.HandleGetFriends).Methods("GET")
	socialRouter.HandleFunc("/requests", controller.HandleGetRequests).Methods("GET")
	socialRouter.HandleFunc("/requests", controller.HandleSendRequest).Methods("POST")
	socialRouter.HandleFunc("/requests/accept", controller.HandleAcceptRequest).Methods("POST")
	socialRouter.HandleFunc("/requests/decline", controller.HandleDeclineRequest).Methods("POST")
	socialRouter.HandleFunc("/follow", controller.HandleFollow).Methods("POST")
	socialRouter.HandleFunc("/unfollow", controller.HandleUnfollow).Methods("POST")
	socialRouter.HandleFunc("/following", controller.HandleGetFollowing).Methods("GET")
}
