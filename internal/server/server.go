// Package server contains the HTTP handlers and middleware wiring of the CoLiver API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "coliver/docs" // swagger docs
	"coliver/internal/bootstrap"
	"coliver/internal/catalog"
	"coliver/internal/config"
	"coliver/internal/geocode"
	"coliver/internal/imagehost"
	"coliver/internal/kvstore"
	"coliver/internal/middleware"
	"coliver/internal/models"
	"coliver/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
)

// bodyLimit leaves room for a base64 encoded photo at the upload size cap.
const bodyLimit = 16 * 1024 * 1024

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	runtime          *bootstrap.Runtime
	app              *fiber.App
	promMiddleware   *fiberprometheus.FiberPrometheus
	catalog          *catalog.Catalog
	geocoder         service.Geocoder
	photos           service.PhotoUploader
	authService      *service.AuthService
	listingService   *service.ListingService
	searchService    *service.SearchService
	favoritesService *service.FavoritesService
	profileService   *service.ProfileService
}

// Deps are the collaborators a Server is assembled from.
type Deps struct {
	Runtime  *bootstrap.Runtime
	Geocoder service.Geocoder
	Photos   service.PhotoUploader
	Catalog  *catalog.Catalog
}

// NewServer opens the configured stores and integrations and builds a Server on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploader, err := imagehost.NewUploader(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("image host init failed: %w", err)
	}
	if uploader == nil {
		middleware.Logger.Warn("No image host configured, photo uploads are disabled")
	}

	tags, err := catalog.Load()
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	return NewServerWithDeps(cfg, Deps{
		Runtime:  rt,
		Geocoder: geocode.New(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent),
		Photos:   imagehost.NewService(uploader, cfg.ImageMaxUploadSizeMB),
		Catalog:  tags,
	}), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer has opened the stores.
func NewServerWithDeps(cfg *config.Config, deps Deps) *Server {
	rt := deps.Runtime

	var revoker service.Revoker
	if rt.Redis != nil {
		revoker = kvstore.NewRevocationList(rt.Redis)
	}

	return &Server{
		config:           cfg,
		runtime:          rt,
		promMiddleware:   middleware.InitMetrics("coliver-api"),
		catalog:          deps.Catalog,
		geocoder:         deps.Geocoder,
		photos:           deps.Photos,
		authService:      service.NewAuthService(rt.Users, rt.Listings, service.NewTokenManager(cfg.JWTSecret), revoker),
		listingService:   service.NewListingService(rt.Listings, rt.Users, deps.Geocoder, deps.Photos, deps.Catalog),
		searchService:    service.NewSearchService(rt.Listings),
		favoritesService: service.NewFavoritesService(rt.Users, rt.Listings),
		profileService:   service.NewProfileService(rt.Users, deps.Photos),
	}
}

// NewApp builds a Fiber app with the full middleware chain and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "CoLiver API",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures all middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span; must run before ContextMiddleware so the trace ID reaches the logger
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Credentialed CORS rejects a wildcard origin, so an empty list falls back to the dev frontends.
	origins := strings.Join(s.config.Origins(), ",")
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Prometheus metrics endpoint
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Get("/session", s.CheckSession)
	auth.Post("/logout", s.Logout)

	listings := api.Group("/listings")
	listings.Get("/", s.BrowseListings)
	listings.Get("/recent", s.GetRecentListings)
	listings.Get("/:id", s.GetListing)
	listings.Post("/", s.AuthRequired(), s.CreateListing)
	listings.Put("/:id", s.AuthRequired(), s.UpdateListing)
	listings.Delete("/:id", s.AuthRequired(), s.DeleteListing)
	listings.Post("/:id/save", s.AuthRequired(), s.SaveListing)
	listings.Delete("/:id/save", s.AuthRequired(), s.UnsaveListing)

	users := api.Group("/users")
	users.Get("/me/saved", s.AuthRequired(), s.GetSavedListings)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Get("/:id", s.GetUserProfile)
	users.Get("/:id/listings", s.GetUserListings)

	api.Post("/upload", s.AuthRequired(), s.UploadImage)
	api.Post("/geocode", s.Geocode)
	api.Get("/catalog", s.GetCatalog)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional and only
// reported; the listing store must answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.runtime.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.runtime.Redis != nil {
		redisStatus = "healthy"
		if err := s.runtime.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting",
		slog.String("port", s.config.Port),
		slog.String("store", s.runtime.Driver),
	)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.runtime.Close(ctx); err != nil {
		middleware.Logger.Error("error closing stores", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
