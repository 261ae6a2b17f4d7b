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

// Bookings is the reservation use case surface served over HTTP.
type Bookings interface {
	Create(ctx context.Context, in service.CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	Confirm(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
	Reschedule(ctx context.Context, id string, checkIn, checkOut time.Time) (*domain.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// ReservationHandler handles reservation HTTP requests.
type ReservationHandler struct {
	bookings  Bookings
	validator *validator.Validator
	logger    *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(bookings Bookings, v *validator.Validator, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		bookings:  bookings,
		validator: v,
		logger:    logger,
	}
}

// Create handles POST /api/v1/reservations
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", "INVALID_BODY")
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	r, err := h.bookings.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return writeError(c, h.logger, "create reservation", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromReservation(r))
}

// Get handles GET /api/v1/reservations/:id
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	r, err := h.bookings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, "get reservation", err)
	}

	return c.JSON(dto.FromReservation(r))
}

// Confirm handles POST /api/v1/reservations/:id/confirm
func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	r, err := h.bookings.Confirm(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, "confirm reservation", err)
	}

	return c.JSON(dto.FromReservation(r))
}

// Cancel handles POST /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	r, err := h.bookings.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, "cancel reservation", err)
	}

	return c.JSON(dto.FromReservation(r))
}

// Reschedule handles PATCH /api/v1/reservations/:id/stay
func (h *ReservationHandler) Reschedule(c *fiber.Ctx) error {
	var req dto.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", "INVALID_BODY")
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	stay := req.Stay()
	r, err := h.bookings.Reschedule(c.UserContext(), c.Params("id"), stay.CheckIn, stay.CheckOut)
	if err != nil {
		return writeError(c, h.logger, "reschedule reservation", err)
	}

	return c.JSON(dto.FromReservation(r))
}
