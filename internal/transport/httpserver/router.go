// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"hotel-booking-service/internal/transport/httpserver/dto"
	"hotel-booking-service/internal/transport/httpserver/handler"
	"hotel-booking-service/internal/transport/httpserver/middleware"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
}

// Handlers groups the route handlers.
type Handlers struct {
	Reservations *handler.ReservationHandler
	Availability *handler.AvailabilityHandler
	Admin        *handler.AdminHandler
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	h Handlers,
	checks map[string]middleware.ReadinessCheck,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "hotel-booking-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
	})

	// Health probes answer before any other middleware runs
	app.Use(middleware.NewHealthCheck(checks, logger))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(compress.New())

	registerRoutes(app, h)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(app *fiber.App, h Handlers) {
	v1 := app.Group("/api/v1")

	reservations := v1.Group("/reservations")
	reservations.Post("/", h.Reservations.Create)
	reservations.Get("/:id", h.Reservations.Get)
	reservations.Post("/:id/confirm", h.Reservations.Confirm)
	reservations.Post("/:id/cancel", h.Reservations.Cancel)
	reservations.Patch("/:id/stay", h.Reservations.Reschedule)

	v1.Get("/rooms/:id/availability", h.Availability.CheckRoom)
	v1.Get("/availability", h.Availability.Search)

	admin := v1.Group("/admin")
	admin.Get("/locks/rooms/:id", h.Admin.LockStatus)
	admin.Delete("/reservations/:id", h.Admin.DeleteReservation)
	admin.Post("/sweep", h.Admin.Sweep)
	if h.Admin.CanWriteRooms() {
		admin.Post("/rooms", h.Admin.UpsertRooms)
	}
	if h.Admin.CanClearCache() {
		admin.Delete("/cache", h.Admin.ClearCache)
	}
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("route not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		msg := err.Error()
		if code >= 500 {
			msg = "internal server error"
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: msg,
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.ShutdownWithContext(ctx)
}
