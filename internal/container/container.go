package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-pet-explorer/app/db"
	"github.com/FACorreiaa/go-pet-explorer/config"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/auth"
	generativeAI "github.com/FACorreiaa/go-pet-explorer/internal/api/generative_ai"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/guide"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/places"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Pool          *pgxpool.Pool
	AuthHandler   *auth.AuthHandler
	PlacesHandler *places.PlacesHandler
	GuideHandler  *guide.GuideHandler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		logger.Error("Failed to create AI client", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	// Repositories
	authRepo := auth.NewPostgresAuthRepo(pool, cfg.JWT, logger)
	guideRepo := guide.NewPostgresGuideRepository(pool, logger)

	// Services
	authService := auth.NewAuthService(authRepo, logger)
	placesClient := places.NewGoogleClient(cfg.Google)
	placesService := places.NewServiceImpl(placesClient, logger,
		places.WithRadii(cfg.Search.NearbyRadius, cfg.Search.BiasedRadius))
	guideService := guide.NewServiceImpl(placesService, aiClient, guideRepo, cfg.Search.MaxResults, logger)

	// Handlers
	return &Container{
		Config:        cfg,
		Logger:        logger,
		Pool:          pool,
		AuthHandler:   auth.NewAuthHandler(authService, logger),
		PlacesHandler: places.NewPlacesHandler(placesService, logger),
		GuideHandler:  guide.NewGuideHandler(guideService, logger),
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
