package api

import (
	"context"
	"log/slog"
	"time"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/middleware"
)

const Version = "1.0.0"

type Dependencies struct {
	FaceService handler.FaceService
	Store       handler.Pinger

	// StaticDir is served under /static; empty disables it.
	StaticDir string
	// BodyLimit in bytes; base64 images are large.
	BodyLimit int
	// DocsHost is advertised in the Swagger document.
	DocsHost string
	// RateLimit is the per-client request budget per minute on /api; 0 disables it.
	RateLimit int
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies

	limiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "Facegate",
		BodyLimit:             deps.BodyLimit,
		DisableStartupMessage: true,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger(r.deps.DocsHost)
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	healthHandler := handler.NewHealthHandler(r.deps.Store, Version, r.logger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps.StaticDir != "" {
		r.app.Static("/static", r.deps.StaticDir)
	}

	faceHandler := handler.NewFaceHandler(r.deps.FaceService, r.logger)

	api := r.app.Group("/api")
	if r.deps.RateLimit > 0 {
		cfg := middleware.DefaultRateLimiterConfig()
		cfg.Max = r.deps.RateLimit
		cfg.Window = time.Minute
		r.limiter = middleware.NewRateLimiter(cfg)
		api.Use(r.limiter.Handler())
	}
	api.Post("/register", faceHandler.Register)
	api.Post("/verify", faceHandler.Verify)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.limiter != nil {
		r.limiter.Stop()
	}
	return r.app.ShutdownWithContext(ctx)
}
