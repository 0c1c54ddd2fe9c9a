package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/db"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/db/migrations"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/routes"
)

// @title PontoGorilla API
// @version 1.0
// @description Auth, profile and points backend for the PontoGorilla app.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if err := db.CreateDatabaseIfNotExists(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to ensure database exists: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Avatar storage is optional in development; routes degrade gracefully.
	s3Config, err := config.NewS3Config()
	if err != nil {
		log.Printf("S3 not configured, avatar upload disabled: %v", err)
		s3Config = &config.S3Config{}
	}

	router := routes.SetupRoutes(database.DB, cfg, s3Config)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give in-flight requests 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
