package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/transport/httpserver/dto"
	"hotel-booking-service/internal/validator"
)

// Availability answers read-only availability queries.
type Availability interface {
	CheckRoom(ctx context.Context, roomID string, stay domain.Stay) (*domain.RoomAvailability, error)
	Search(ctx context.Context, filter domain.AvailabilityFilter) (*domain.SearchResult, error)
}

// AvailabilityHandler handles availability HTTP requests.
type AvailabilityHandler struct {
	availability Availability
	validator    *validator.Validator
	logger       *zap.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(availability Availability, v *validator.Validator, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		validator:    v,
		logger:       logger,
	}
}

// CheckRoom handles GET /api/v1/rooms/:id/availability
func (h *AvailabilityHandler) CheckRoom(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if q == nil {
		return err
	}

	stay := q.Stay()
	verdict, err := h.availability.CheckRoom(c.UserContext(), c.Params("id"), stay)
	if err != nil {
		return writeError(c, h.logger, "check availability", err)
	}

	return c.JSON(dto.FromAvailability(verdict, stay))
}

// Search handles GET /api/v1/availability
func (h *AvailabilityHandler) Search(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if q == nil {
		return err
	}

	result, err := h.availability.Search(c.UserContext(), q.ToFilter())
	if err != nil {
		return writeError(c, h.logger, "search availability", err)
	}

	return c.JSON(dto.FromSearchResult(result))
}

// parseQuery returns a nil query once it has written a 400 response.
func (h *AvailabilityHandler) parseQuery(c *fiber.Ctx) (*dto.AvailabilityQuery, error) {
	var q dto.AvailabilityQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, badRequest(c, "invalid query parameters", "INVALID_PARAMS")
	}

	if err := h.validator.Validate(&q); err != nil {
		return nil, validationFailed(c, err)
	}

	return &q, nil
}
