package domain

import "math"

// Room is read-only to the booking core.
type Room struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	MaxOccupancy int     `json:"max_occupancy"`
	BasePrice    float64 `json:"base_price"`
	Active       bool    `json:"active"`
}

// PriceFor returns the total for a stay: base price times started nights.
func (r *Room) PriceFor(stay Stay) float64 {
	total := r.BasePrice * float64(stay.Nights())
	return roundTo2Decimals(total)
}

// CanHost reports whether the room is bookable for the given party size.
func (r *Room) CanHost(guests int) bool {
	return r.Active && guests >= 1 && guests <= r.MaxOccupancy
}

func roundTo2Decimals(v float64) float64 {
	return math.Round(v*100) / 100
}
