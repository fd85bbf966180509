package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up routes for authentication under /api/auth
func RegisterAuthRoutes(r *mux.Router, session *services.SessionService, auth *services.AuthService) {
	controller := controllers.NewAuthController(session)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/signup", controller.HandleSignUp).Methods("POST")
	authRouter.HandleFunc("/signin", controller.HandleSignIn).Methods("POST")
	authRouter.HandleFunc("/session", controller.HandleSession).Methods("GET")

	// Sign-out requires a valid token.
	signedIn := r.PathPrefix("/api/auth").Subrouter()
	signedIn.Use(authMiddleware(auth))
	signedIn.HandleFunc("/signout", controller.HandleSignOut).Methods("POST")
}
