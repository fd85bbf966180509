package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chat *services.ChatService, profiles *services.UserProfileService, session *services.SessionService, auth *services.AuthService) {
	controller := controllers.NewChatController(chat, profiles, session)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.Use(authMiddleware(auth))

	chatRouter.HandleFunc("/global", controller.HandleSendGlobal).Methods("POST")
	chatRouter.HandleFunc("/direct", controller.HandleSendDirect).Methods("POST")
	chatRouter.HandleFunc("/direct/open", controller.HandleOpenDirect).Methods("POST")
	chatRouter.HandleFunc("/direct/close", controller.HandleCloseDirect).Methods("POST")
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/threads", controller.HandleGetThreads).Methods("GET")
	chatRouter.HandleFunc("/threads/mark-read", controller.HandleMarkRead).Methods("POST")
}
