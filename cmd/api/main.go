package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/asu-connect/api/docs"
	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/internal/club"
	"github.com/asu-connect/api/internal/config"
	"github.com/asu-connect/api/internal/database"
	"github.com/asu-connect/api/internal/event"
	"github.com/asu-connect/api/internal/flag"
	"github.com/asu-connect/api/internal/moderation"
	"github.com/asu-connect/api/internal/profile"
	mw "github.com/asu-connect/api/pkg/middleware"
)

// @title        ASU Connect API
// @version      1.0
// @description  Student organization directory: clubs, events, membership and moderation
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Authorization rule registry; construction fails if any rule violates
	// the table-rank discipline
	authorizer, err := authz.New(authz.NewPostgresResolver(db))
	if err != nil {
		log.Fatalf("Invalid authorization rule set: %v", err)
	}

	// Profile feature
	profileRepo := profile.NewRepository(db)
	profileService := profile.NewService(profileRepo, authorizer)
	profileHandler := profile.NewHandler(profileService)

	// Club feature
	clubRepo := club.NewRepository(db)
	clubService := club.NewService(clubRepo, authorizer)
	clubHandler := club.NewHandler(clubService)

	// Event feature
	eventRepo := event.NewRepository(db)
	eventService := event.NewService(eventRepo, authorizer)
	eventHandler := event.NewHandler(eventService)

	// Flag feature
	flagRepo := flag.NewRepository(db)
	flagService := flag.NewService(flagRepo, authorizer)
	flagHandler := flag.NewHandler(flagService)

	// Moderation feature (admin queue + audit log)
	moderationRepo := moderation.NewRepository(db)
	moderationService := moderation.NewService(moderationRepo, clubService, authorizer)
	moderationHandler := moderation.NewHandler(moderationService)

	// Auth middleware chains: public routes attach a principal when a token
	// is present, protected routes require one. Both provision the profile
	// row for authenticated callers.
	authn := mw.NewAuthenticator(cfg.JWTSecret)
	public := chi.Chain(authn.Optional, profileService.EnsureProfile)
	protected := chi.Chain(authn.Require, profileService.EnsureProfile)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/profiles", profileHandler.Routes(public, protected))
		r.Mount("/clubs", clubHandler.Routes(public, protected))
		r.Mount("/events", eventHandler.Routes(public, protected))
		r.Mount("/flags", flagHandler.Routes(protected))
		r.Mount("/admin", moderationHandler.Routes(protected))

		r.Group(func(r chi.Router) {
			r.Use(protected...)
			r.Mount("/me", profileHandler.MeRoutes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
