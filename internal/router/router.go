package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/roly/internal/config"
	"github.com/soltixdb/roly/internal/handlers"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/middleware"
	"github.com/soltixdb/roly/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, datasetService *services.DatasetService, cfg config.Config, version string) *handlers.Handler {
	h := handlers.New(logger, datasetService, version)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, "/health"))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	v1 := app.Group("/v1", authMiddleware)
	v1.Get("/datasets", h.ListDatasets)
	v1.Get("/datasets/:dataset", h.GetDataset)
	v1.Get("/datasets/:dataset/columns/:column", h.ReadColumn)

	admin := app.Group("/admin", authMiddleware)
	admin.Get("/catalog/stats", h.CatalogStats)
	admin.Post("/catalog/invalidate/:dataset", h.InvalidateDataset)

	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, datasetService *services.DatasetService, cfg config.Config, version string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Roly Catalog",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, datasetService, cfg, version)

	return app
}
