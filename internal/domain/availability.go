package domain

import "time"

// AvailabilityFilter describes a date-range search across rooms.
type AvailabilityFilter struct {
	Stay   Stay
	Guests int
}

// RoomAvailability is the verdict for one room and one stay.
type RoomAvailability struct {
	RoomID    string   `json:"room_id"`
	Available bool     `json:"available"`
	Conflicts []string `json:"conflicts,omitempty"`
	Cached    bool     `json:"cached"`
}

// SearchResult lists the rooms available for a filter.
type SearchResult struct {
	Rooms  []*Room `json:"rooms"`
	Cached bool    `json:"cached"`
}

// EventType names a reservation lifecycle event.
type EventType string

const (
	EventReservationCreated     EventType = "reservation.created"
	EventReservationConfirmed   EventType = "reservation.confirmed"
	EventReservationCancelled   EventType = "reservation.cancelled"
	EventReservationCompleted   EventType = "reservation.completed"
	EventReservationRescheduled EventType = "reservation.rescheduled"
	EventReservationDeleted     EventType = "reservation.deleted"
)

// ReservationEvent is published after a reservation changed in the store.
type ReservationEvent struct {
	Type        EventType    `json:"type"`
	Reservation *Reservation `json:"reservation"`
	OccurredAt  time.Time    `json:"occurred_at"`
}
