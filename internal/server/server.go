package server

import (
	"context"
	"log"

	"marimo-hub-be/internal/bootstrap"
	"marimo-hub-be/internal/config"
	"marimo-hub-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "marimo-hub",
		BodyLimit:             cfg.App.BodyLimit,
		// Request strings end up in the store and must outlive the handler.
		Immutable:             true,
		ErrorHandler:          serverutils.ErrorHandler(container.Logger),
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(recover.New())
	if !cfg.IsTest() {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, OPTIONS",
		MaxAge:       86400,
	}))
	app.Use(serverutils.AllowAllOriginsMiddleware())

	// OpenTelemetry tracing middleware (no-op unless a tracer provider is installed)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then releases the container.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if cerr := s.container.Close(); err == nil {
		err = cerr
	}
	return err
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.NotebookController.RegisterRoutes(api)
	c.MarimoController.RegisterRoutes(api)

	c.ViewerController.RegisterRoutes(app)
	c.HealthController.RegisterRoutes(app)
}
