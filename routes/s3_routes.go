package routes

import (
	"satex_server/controllers"
	"satex_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for S3 presigned URL operations
func RegisterS3Routes(r *mux.Router, auth *services.AuthService) {
	s3Router := r.PathPrefix("/api/uploads").Subrouter()
	s3Router.Use(authMiddleware(auth))

	s3Router.HandleFunc("/presign", controllers.GeneratePresignedURL).Methods("POST")
	s3Router.HandleFunc("/presign-read", controllers.GetPresignedReadURL).Methods("POST")
}
