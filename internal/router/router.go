package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-pet-explorer/internal/api/auth"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/guide"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/places"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandler
	PlacesHandler          *places.PlacesHandler
	GuideHandler           *guide.GuideHandler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			r.Get("/places/search", cfg.PlacesHandler.Search)
			r.Get("/places/{placeID}", cfg.PlacesHandler.Details)

			r.Post("/explore", cfg.GuideHandler.Explore)

			r.Route("/guides", func(r chi.Router) {
				r.Post("/", cfg.GuideHandler.SaveGuide)
				r.Get("/", cfg.GuideHandler.GetGuides)
				r.Get("/{guideID}", cfg.GuideHandler.GetGuide)
				r.Delete("/{guideID}", cfg.GuideHandler.DeleteGuide)
			})
		})
	})

	return r
}
