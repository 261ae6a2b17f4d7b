package catalog

import "hotel-booking-service/internal/domain"

// RoomItem is a room as returned by the inventory API.
type RoomItem struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	MaxOccupancy int     `json:"max_occupancy"`
	BasePrice    float64 `json:"base_price"`
	Status       string  `json:"status"` // active, maintenance, retired
}

// ListResponse is the body of the room listing endpoint.
type ListResponse struct {
	Rooms []RoomItem `json:"rooms"`
}

// ToDomain converts RoomItem to domain.Room. Only rooms in status "active" are bookable.
func (r *RoomItem) ToDomain() *domain.Room {
	return &domain.Room{
		ID:           r.ID,
		Number:       r.Number,
		MaxOccupancy: r.MaxOccupancy,
		BasePrice:    r.BasePrice,
		Active:       r.Status == "active",
	}
}
