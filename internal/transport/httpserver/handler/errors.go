// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/transport/httpserver/dto"
)

// RetryAfterSeconds is sent with 503 responses when a room lock is busy.
const RetryAfterSeconds = 1

// writeError maps service errors to HTTP responses.
func writeError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	var (
		conflict *domain.BookingConflictError
		invalid  *domain.BookingInvalidError
	)

	switch {
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error:   conflict.Error(),
			Code:    "BOOKING_CONFLICT",
			Details: conflict.Messages(),
		})
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error:   "booking request is invalid",
			Code:    "BOOKING_INVALID",
			Details: invalid.Messages(),
		})
	case errors.Is(err, domain.ErrLockAcquisitionFailed):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: domain.ErrLockAcquisitionFailed.Error(),
			Code:  "ROOM_BUSY",
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "resource not found",
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_TRANSITION",
		})
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: domain.ErrConcurrentUpdate.Error(),
			Code:  "CONCURRENT_UPDATE",
		})
	}

	logger.Error(op+" failed", zap.Error(err))

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: op + " failed",
		Code:  "INTERNAL_ERROR",
	})
}

func badRequest(c *fiber.Ctx, msg, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: err,
	})
}
