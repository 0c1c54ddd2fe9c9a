package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/handlers"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/middleware"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
)

func RegisterProfileRoutes(router chi.Router, db *sql.DB, s3Config *config.S3Config, tokens *auth.Manager) {
	profileRepo := repository.NewProfileRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	profileHandler := handlers.NewProfileHandler(profileRepo)
	pointsHandler := handlers.NewPointsHandler(pointsRepo)

	router.Get("/get-profile/{userId}", profileHandler.GetProfile)
	router.Post("/update-profile", profileHandler.UpdateProfile)
	router.Get("/points/{userId}", pointsHandler.ListPoints)

	router.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(tokens))
		r.Get("/me", profileHandler.Me)
		if s3Config != nil && s3Config.Client != nil && s3Config.Bucket != "" {
			avatarHandler := handlers.NewAvatarHandler(profileRepo, s3Config)
			r.Post("/upload-avatar", avatarHandler.UploadAvatar)
		}
	})
}
