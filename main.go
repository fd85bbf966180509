package main

import (
	"log"
	"net/http"
	"os"

	"satex_server/events"
	"satex_server/routes"
	"satex_server/services"
	"satex_server/socket"
	"satex_server/utils"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Event bus and the single-goroutine subscription dispatcher
	bus := events.NewBus()
	dispatcher := services.NewDispatcher()
	defer dispatcher.Stop()

	// Initialize Services
	localStore := utils.NewLocalStore(os.Getenv("LOCAL_STORE_FILE"))
	authService := &services.AuthService{Dynamo: dynamoService}
	feedService := &services.FeedService{Dynamo: dynamoService}
	profileService := &services.UserProfileService{Dynamo: dynamoService, Feed: feedService}
	chatService := &services.ChatService{Dynamo: dynamoService}
	friendService := &services.FriendService{Dynamo: dynamoService, Feed: feedService}
	subscriptionService := &services.SubscriptionService{Dispatcher: dispatcher}
	gameService := &services.GameService{Store: localStore}
	gameService.LoadCatalog()

	sessionService := &services.SessionService{
		Bus:      bus,
		Auth:     authService,
		Profiles: profileService,
		Friends:  friendService,
		Chat:     chatService,
		Feed:     feedService,
		Subs:     subscriptionService,
		Store:    localStore,
	}

	// Socket.IO push surface: bus events out to connected clients
	socketServer := socket.NewSocketServer()
	socket.Bridge(bus, socketServer)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterAuthRoutes(r, sessionService, authService)
	routes.RegisterUserProfileRoutes(r, profileService, authService)
	routes.RegisterSocialRoutes(r, friendService, profileService, authService)
	routes.RegisterChatRoutes(r, chatService, profileService, sessionService, authService)
	routes.RegisterFeedRoutes(r, feedService, profileService, authService)
	routes.RegisterGameRoutes(r, gameService)
	routes.RegisterS3Routes(r, authService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
