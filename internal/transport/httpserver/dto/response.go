package dto

import (
	"time"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/validator"
)

// ReservationResponse represents a reservation in responses.
type ReservationResponse struct {
	ID             string  `json:"id"`
	RoomID         string  `json:"room_id"`
	OwnerID        string  `json:"owner_id"`
	CheckIn        string  `json:"check_in"`
	CheckOut       string  `json:"check_out"`
	Nights         int     `json:"nights"`
	Guests         int     `json:"guests"`
	TotalAmount    float64 `json:"total_amount"`
	Status         string  `json:"status"`
	SpecialRequest string  `json:"special_request,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// FromReservation converts domain.Reservation to ReservationResponse.
func FromReservation(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:             r.ID,
		RoomID:         r.RoomID,
		OwnerID:        r.OwnerID,
		CheckIn:        r.CheckIn.UTC().Format(validator.DateLayout),
		CheckOut:       r.CheckOut.UTC().Format(validator.DateLayout),
		Nights:         r.Stay().Nights(),
		Guests:         r.Guests,
		TotalAmount:    r.TotalAmount,
		Status:         string(r.Status),
		SpecialRequest: r.SpecialRequest,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// RoomResponse represents a room in responses.
type RoomResponse struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	MaxOccupancy int     `json:"max_occupancy"`
	BasePrice    float64 `json:"base_price"`
	Active       bool    `json:"active"`
}

// FromRoom converts domain.Room to RoomResponse.
func FromRoom(r *domain.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID,
		Number:       r.Number,
		MaxOccupancy: r.MaxOccupancy,
		BasePrice:    r.BasePrice,
		Active:       r.Active,
	}
}

// AvailabilityResponse is the verdict for one room and stay.
type AvailabilityResponse struct {
	RoomID    string   `json:"room_id"`
	CheckIn   string   `json:"check_in"`
	CheckOut  string   `json:"check_out"`
	Available bool     `json:"available"`
	Conflicts []string `json:"conflicts,omitempty"`
	Cached    bool     `json:"cached"`
}

// FromAvailability converts domain.RoomAvailability to AvailabilityResponse.
func FromAvailability(a *domain.RoomAvailability, stay domain.Stay) AvailabilityResponse {
	return AvailabilityResponse{
		RoomID:    a.RoomID,
		CheckIn:   stay.CheckIn.UTC().Format(validator.DateLayout),
		CheckOut:  stay.CheckOut.UTC().Format(validator.DateLayout),
		Available: a.Available,
		Conflicts: a.Conflicts,
		Cached:    a.Cached,
	}
}

// SearchResponse lists the rooms free for a stay.
type SearchResponse struct {
	Rooms  []RoomResponse `json:"rooms"`
	Total  int            `json:"total"`
	Cached bool           `json:"cached"`
}

// FromSearchResult converts domain.SearchResult to SearchResponse.
func FromSearchResult(result *domain.SearchResult) SearchResponse {
	rooms := make([]RoomResponse, len(result.Rooms))
	for i, r := range result.Rooms {
		rooms[i] = FromRoom(r)
	}

	return SearchResponse{Rooms: rooms, Total: len(rooms), Cached: result.Cached}
}

// LockStatusResponse reports whether a room lock is currently held.
type LockStatusResponse struct {
	Key   string `json:"key"`
	Held  bool   `json:"held"`
	TTLMs int64  `json:"ttl_ms,omitempty"`
}

// SweepResultResponse represents one housekeeping task outcome.
type SweepResultResponse struct {
	Task     string `json:"task"`
	Count    int    `json:"count"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// SweepResponse represents the response for a manual sweep.
type SweepResponse struct {
	Results []SweepResultResponse `json:"results"`
	Summary SweepSummary          `json:"summary"`
}

// SweepSummary holds the totals of a sweep.
type SweepSummary struct {
	Transitioned int `json:"transitioned"`
	Failed       int `json:"failed"`
	TasksFailed  int `json:"tasks_failed"`
}

// FromSweepResults converts service.SweepResult slice to SweepResponse.
func FromSweepResults(results []service.SweepResult) SweepResponse {
	resp := SweepResponse{
		Results: make([]SweepResultResponse, len(results)),
	}

	for i, r := range results {
		errMsg := ""
		if r.Error != nil {
			errMsg = r.Error.Error()
			resp.Summary.TasksFailed++
		}
		resp.Summary.Transitioned += r.Count
		resp.Summary.Failed += r.Failed

		resp.Results[i] = SweepResultResponse{
			Task:     r.Task,
			Count:    r.Count,
			Failed:   r.Failed,
			Duration: r.Duration.String(),
			Error:    errMsg,
		}
	}

	return resp
}

// UpsertRoomsResponse reports how many rooms were written.
type UpsertRoomsResponse struct {
	Upserted int `json:"upserted"`
}

// ClearCacheResponse reports how many cache entries were removed.
type ClearCacheResponse struct {
	Deleted int `json:"deleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
