// @title           Visual God Backend API
// @version         1.0.0
// @description     Backend API for turning product photos into platform-ready marketing images. It validates uploads with the AI backend, tracks generation sessions and credits, stores generated images in Supabase Storage and publishes progress via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"visual-god-backend/docs"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/config"
	"visual-god-backend/internal/database"
	"visual-god-backend/internal/handlers"
	"visual-god-backend/internal/middleware"
	"visual-god-backend/internal/ratelimit"
	"visual-god-backend/internal/services"
	"visual-god-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var errNoDatabase = errors.New("database not configured")

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	// Database: optional, DB-backed routes answer "database not available" without it
	var store services.Store
	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	} else {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to database: %v", err)
			log.Println("Database operations will be unavailable. Please configure DATABASE_URL properly.")
		} else {
			if err := database.NewMigrator(db).Run(ctx); err != nil {
				log.Printf("Warning: Migration failed: %v", err)
			} else {
				log.Println("Migrations completed successfully")
			}
			dbClient = supabase.NewDatabaseClient(db)
			defer dbClient.Close()
			store = dbClient
		}
	}

	// Supabase clients
	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}
	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey,
		cfg.SupabaseImagesBucket, cfg.SupabaseAvatarsBucket)
	realtimeClient := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

	// AI backend
	aiClient := aibackend.NewClient(cfg.AIBackendURL, cfg.AIBackendAPIKey, cfg.AIBackendTimeout, cfg.AIValidateTimeout)

	// Rate limiter: shared through Redis when configured, per instance otherwise
	var limiter ratelimit.Limiter
	var redisLimiter *ratelimit.RedisLimiter
	if cfg.RedisURL != "" {
		redisLimiter, err = ratelimit.NewRedisLimiter(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, using in-process rate limiting: %v", err)
		} else {
			defer redisLimiter.Close()
			limiter = redisLimiter
		}
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter()
	}

	planLookup := func(ctx context.Context, userID uuid.UUID) (string, error) {
		if store == nil {
			return "", errNoDatabase
		}
		profile, err := store.GetProfile(ctx, userID)
		if err != nil {
			return "", err
		}
		return profile.Plan, nil
	}

	// Services
	generationService := services.NewGenerationService(aiClient, store, storageClient, supabaseClient,
		realtimeClient, cfg.UploadConcurrency)
	statsService := services.NewStatsService(supabaseClient, store)

	// Initialize handlers (store might be nil, handlers should handle this)
	processHandler := handlers.NewProcessHandler(generationService, store, cfg.MaxImageBytes)
	sessionsHandler := handlers.NewSessionsHandler(store, generationService)
	statusHandler := handlers.NewStatusHandler(store)
	imagesHandler := handlers.NewImagesHandler(store)
	profilesHandler := handlers.NewProfilesHandler(store, storageClient)
	statsHandler := handlers.NewStatsHandler(store, statsService)

	checks := map[string]handlers.HealthCheck{
		"ai_backend": aiClient.Health,
		"database": func(ctx context.Context) error {
			if store == nil {
				return errNoDatabase
			}
			return store.Ping(ctx)
		},
	}
	if redisLimiter != nil {
		checks["redis"] = redisLimiter.Ping
	}
	readinessHandler := handlers.NewReadinessHandler(checks)

	// Setup router
	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/health/ready", readinessHandler.Ready)

	// API routes
	api := router.Group("/api/v1")
	api.GET("/platforms", handlers.ListPlatforms)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.SupabaseJWTSecret))

	// Generation (rate limited per user)
	limited := middleware.RateLimit(limiter, planLookup, cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	authed.POST("/validate", limited, processHandler.Validate)
	authed.POST("/process", limited, processHandler.Process)

	// Session routes
	authed.POST("/sessions", sessionsHandler.CreateSession)
	authed.GET("/sessions", sessionsHandler.ListSessions)
	authed.GET("/sessions/:session_id", sessionsHandler.GetSession)
	authed.DELETE("/sessions/:session_id", sessionsHandler.DeleteSession)
	authed.GET("/sessions/:session_id/status", statusHandler.GetStatus)
	authed.GET("/sessions/:session_id/images", imagesHandler.ListImages)

	// Profile and usage
	authed.GET("/profile", profilesHandler.GetProfile)
	authed.PATCH("/profile", profilesHandler.UpdateProfile)
	authed.POST("/profile/avatar", profilesHandler.UploadAvatar)
	authed.GET("/stats", statsHandler.GetStats)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
