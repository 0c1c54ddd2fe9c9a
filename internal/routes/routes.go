package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/handlers"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	healthHandler := handlers.NewHealthHandler(db)
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)

	tokens := auth.NewManager(cfg.JWTSecret)

	r.Route("/api/auth", func(r chi.Router) {
		RegisterAuthRoutes(r, db, cfg, tokens)
		RegisterProfileRoutes(r, db, s3Config, tokens)
	})

	RegisterSwaggerRoutes(r)

	return r
}
