package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/transport/httpserver/dto"
	"hotel-booking-service/internal/validator"
)

// LockInspector reports the remaining lifetime of a lock key.
type LockInspector interface {
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}

// Sweeper runs the reservation housekeeping tasks.
type Sweeper interface {
	Sweep(ctx context.Context) []service.SweepResult
}

// RoomWriter stores catalog rooms.
type RoomWriter interface {
	BulkUpsert(ctx context.Context, rooms []*domain.Room) error
}

// CacheClearer drops every cached availability entry.
type CacheClearer interface {
	Clear(ctx context.Context) (int, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	bookings  Bookings
	locks     LockInspector
	sweeper   Sweeper
	rooms     RoomWriter
	cache     CacheClearer
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. rooms may be nil when the catalog is read-only,
// cache when caching is disabled.
func NewAdminHandler(
	bookings Bookings,
	locks LockInspector,
	sweeper Sweeper,
	rooms RoomWriter,
	cache CacheClearer,
	v *validator.Validator,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		bookings:  bookings,
		locks:     locks,
		sweeper:   sweeper,
		rooms:     rooms,
		cache:     cache,
		validator: v,
		logger:    logger,
	}
}

// CanWriteRooms reports whether UpsertRooms has a store behind it.
func (h *AdminHandler) CanWriteRooms() bool {
	return h.rooms != nil
}

// CanClearCache reports whether ClearCache has a cache behind it.
func (h *AdminHandler) CanClearCache() bool {
	return h.cache != nil
}

// LockStatus handles GET /api/v1/admin/locks/rooms/:id
func (h *AdminHandler) LockStatus(c *fiber.Ctx) error {
	key := service.RoomLockKey(c.Params("id"))

	ttl, held, err := h.locks.TTL(c.UserContext(), key)
	if err != nil {
		h.logger.Error("lock status failed", zap.String("key", key), zap.Error(err))

		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "lock store unavailable",
			Code:  "LOCK_STORE_UNAVAILABLE",
		})
	}

	return c.JSON(dto.LockStatusResponse{
		Key:   key,
		Held:  held,
		TTLMs: ttl.Milliseconds(),
	})
}

// DeleteReservation handles DELETE /api/v1/admin/reservations/:id
func (h *AdminHandler) DeleteReservation(c *fiber.Ctx) error {
	id := c.Params("id")
	h.logger.Info("reservation delete requested", zap.String("reservation_id", id))

	if err := h.bookings.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, "delete reservation", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertRooms handles POST /api/v1/admin/rooms
func (h *AdminHandler) UpsertRooms(c *fiber.Ctx) error {
	var req dto.UpsertRoomsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", "INVALID_BODY")
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	rooms := req.ToDomain()
	if err := h.rooms.BulkUpsert(c.UserContext(), rooms); err != nil {
		return writeError(c, h.logger, "upsert rooms", err)
	}

	h.logger.Info("rooms upserted", zap.Int("count", len(rooms)))

	return c.JSON(dto.UpsertRoomsResponse{Upserted: len(rooms)})
}

// Sweep handles POST /api/v1/admin/sweep
func (h *AdminHandler) Sweep(c *fiber.Ctx) error {
	h.logger.Info("manual sweep triggered")

	results := h.sweeper.Sweep(c.UserContext())

	return c.JSON(dto.FromSweepResults(results))
}

// ClearCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	deleted, err := h.cache.Clear(c.UserContext())
	if err != nil {
		h.logger.Error("cache clear failed", zap.Int("deleted", deleted), zap.Error(err))

		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "cache store unavailable",
			Code:  "CACHE_UNAVAILABLE",
		})
	}

	return c.JSON(dto.ClearCacheResponse{Deleted: deleted})
}
