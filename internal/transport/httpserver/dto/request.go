// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"time"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/validator"
)

// CreateReservationRequest is the body of POST /api/v1/reservations.
type CreateReservationRequest struct {
	OwnerID        string `json:"owner_id" validate:"required,identifier"`
	RoomID         string `json:"room_id" validate:"required,identifier"`
	CheckIn        string `json:"check_in" validate:"required,isodate"`
	CheckOut       string `json:"check_out" validate:"required,isodate"`
	Guests         int    `json:"guests" validate:"min=1,max=20"`
	SpecialRequest string `json:"special_request" validate:"max=500"`
}

// ToInput converts the request to a service input. Call it after validation.
func (r *CreateReservationRequest) ToInput() service.CreateReservationInput {
	return service.CreateReservationInput{
		OwnerID:        r.OwnerID,
		RoomID:         r.RoomID,
		CheckIn:        ParseDate(r.CheckIn),
		CheckOut:       ParseDate(r.CheckOut),
		Guests:         r.Guests,
		SpecialRequest: r.SpecialRequest,
	}
}

// RescheduleRequest is the body of PATCH /api/v1/reservations/:id/stay.
type RescheduleRequest struct {
	CheckIn  string `json:"check_in" validate:"required,isodate"`
	CheckOut string `json:"check_out" validate:"required,isodate"`
}

// Stay returns the requested stay.
func (r *RescheduleRequest) Stay() domain.Stay {
	return domain.NewStay(ParseDate(r.CheckIn), ParseDate(r.CheckOut))
}

// AvailabilityQuery holds the query parameters of the availability endpoints.
// Guests is only used by the search endpoint.
type AvailabilityQuery struct {
	CheckIn  string `query:"check_in" validate:"required,isodate"`
	CheckOut string `query:"check_out" validate:"required,isodate"`
	Guests   int    `query:"guests" validate:"omitempty,min=1,max=20"`
}

// Stay returns the queried stay.
func (q *AvailabilityQuery) Stay() domain.Stay {
	return domain.NewStay(ParseDate(q.CheckIn), ParseDate(q.CheckOut))
}

// ToFilter converts the query to a search filter. Guests defaults to 1.
func (q *AvailabilityQuery) ToFilter() domain.AvailabilityFilter {
	guests := q.Guests
	if guests == 0 {
		guests = 1
	}
	return domain.AvailabilityFilter{Stay: q.Stay(), Guests: guests}
}

// UpsertRoomsRequest is the body of POST /api/v1/admin/rooms.
type UpsertRoomsRequest struct {
	Rooms []RoomRequest `json:"rooms" validate:"required,min=1,max=500,dive"`
}

// RoomRequest describes one room of the catalog.
type RoomRequest struct {
	ID           string  `json:"id" validate:"required,identifier"`
	Number       string  `json:"number" validate:"required,max=20"`
	MaxOccupancy int     `json:"max_occupancy" validate:"min=1,max=20"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	Active       *bool   `json:"active"`
}

// ToDomain converts the request to domain rooms. A missing active flag means active.
func (r *UpsertRoomsRequest) ToDomain() []*domain.Room {
	rooms := make([]*domain.Room, len(r.Rooms))
	for i, room := range r.Rooms {
		active := true
		if room.Active != nil {
			active = *room.Active
		}
		rooms[i] = &domain.Room{
			ID:           room.ID,
			Number:       room.Number,
			MaxOccupancy: room.MaxOccupancy,
			BasePrice:    room.BasePrice,
			Active:       active,
		}
	}
	return rooms
}

// ParseDate parses a validated YYYY-MM-DD date as midnight UTC.
// It returns the zero time for malformed input.
func ParseDate(s string) time.Time {
	t, err := time.Parse(validator.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
