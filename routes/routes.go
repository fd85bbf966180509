package routes

import (
	"net/http"

	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the unauthenticated base routes
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/welcome", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/privacy-policy", PrivacyPolicyHandler).Methods("GET")
}

// authMiddleware adapts RequireAuth to mux's middleware shape.
func authMiddleware(auth *services.AuthService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return controllers.RequireAuth(auth, next)
	}
}
