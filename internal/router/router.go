package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/dots-fit/dots-backend/internal/handlers"
	"github.com/dots-fit/dots-backend/internal/matching"
	"github.com/dots-fit/dots-backend/internal/middleware"
	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/dots-fit/dots-backend/internal/ws"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Sport{},
		&models.Goal{},
		&models.Buddy{},
		&models.Event{},
		&models.EventRSVP{},
		&models.Message{},
		&models.GroupChat{},
		&models.GroupMember{},
		&models.Like{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	referenceRepo := repositories.NewPostgresReferenceRepository(pgdb)
	buddyRepo := repositories.NewPostgresBuddyRepository(pgdb)
	eventRepo := repositories.NewPostgresEventRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("dotsfit"))
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)

	// --- Matching core and live delivery hub ---
	ranker := matching.NewRanker(userRepo, buddyRepo, eventRepo)
	matchService := matching.NewService(userRepo, buddyRepo, eventRepo)
	hub := ws.NewHub()

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// WebSocket endpoint authenticates via token query param, outside the
	// JWT middleware group
	wsHandler := handlers.NewWSHandler(messageRepo, userRepo, eventRepo, groupRepo, hub)
	wsHandler.RegisterWSRoutes(e)
	log.Println("WebSocket endpoint configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, referenceRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	log.Println("User profile routes configured.")

	// Reference data routes
	referenceHandler := handlers.NewReferenceHandler(referenceRepo)
	referenceHandler.RegisterReferenceRoutes(api)
	log.Println("Reference data routes configured.")

	// Buddy routes
	buddyHandler := handlers.NewBuddyHandler(buddyRepo, userRepo, ranker, matchService)
	buddyHandler.RegisterBuddyRoutes(api)
	log.Println("Buddy routes configured.")

	// Event routes
	eventHandler := handlers.NewEventHandler(eventRepo, userRepo, referenceRepo)
	eventHandler.RegisterEventRoutes(api)
	log.Println("Event routes configured.")

	// Messaging routes
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, eventRepo, groupRepo, hub)
	messageHandler.RegisterMessageRoutes(api)
	log.Println("Messaging routes configured.")

	// Group chat routes
	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo)
	groupHandler.RegisterGroupRoutes(api)
	log.Println("Group chat routes configured.")

	// Post and feed routes
	postHandler := handlers.NewPostHandler(postRepo, likeRepo, userRepo)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post and feed routes configured.")
}
