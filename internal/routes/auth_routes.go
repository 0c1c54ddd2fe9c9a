package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/handlers"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config, tokens *auth.Manager) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
	authHandler := handlers.NewAuthHandler(db, cfg, tokens, mailer)

	router.Post("/register", authHandler.Register)
	router.Post("/login", authHandler.Login)
	router.Post("/forgot", authHandler.ForgotPassword)
	router.Post("/reset", authHandler.ResetPassword)
}
