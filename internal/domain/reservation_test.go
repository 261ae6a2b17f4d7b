package domain

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStay_Overlaps(t *testing.T) {
	existing := NewStay(date("2024-02-01"), date("2024-02-05"))

	tests := []struct {
		name      string
		candidate Stay
		expected  bool
	}{
		{"overlapping tail", NewStay(date("2024-02-03"), date("2024-02-06")), true},
		{"touching boundary after", NewStay(date("2024-02-05"), date("2024-02-08")), false},
		{"touching boundary before", NewStay(date("2024-01-28"), date("2024-02-01")), false},
		{"contained", NewStay(date("2024-02-02"), date("2024-02-03")), true},
		{"containing", NewStay(date("2024-01-30"), date("2024-02-10")), true},
		{"identical", NewStay(date("2024-02-01"), date("2024-02-05")), true},
		{"disjoint", NewStay(date("2024-03-01"), date("2024-03-02")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.candidate); got != tt.expected {
				t.Errorf("Overlaps() = %v, want %v", got, tt.expected)
			}
			if got := tt.candidate.Overlaps(existing); got != tt.expected {
				t.Errorf("Overlaps() is not symmetric: got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStay_Nights(t *testing.T) {
	tests := []struct {
		name     string
		stay     Stay
		expected int
	}{
		{"three nights", NewStay(date("2024-03-01"), date("2024-03-04")), 3},
		{"partial day rounds up", Stay{CheckIn: date("2024-03-01"), CheckOut: date("2024-03-02").Add(2 * time.Hour)}, 2},
		{"empty stay", NewStay(date("2024-03-01"), date("2024-03-01")), 0},
		{"inverted stay", NewStay(date("2024-03-04"), date("2024-03-01")), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Nights(); got != tt.expected {
				t.Errorf("Nights() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestReservationStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestReservationStatus_IsActive(t *testing.T) {
	active := map[ReservationStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
	}
	for status, want := range active {
		if got := status.IsActive(); got != want {
			t.Errorf("%s.IsActive() = %v, want %v", status, got, want)
		}
	}
}

func TestRoom_PriceFor(t *testing.T) {
	room := &Room{ID: "R1", BasePrice: 100, MaxOccupancy: 2, Active: true}

	got := room.PriceFor(NewStay(date("2024-03-01"), date("2024-03-04")))
	if got != 300 {
		t.Errorf("PriceFor() = %v, want 300", got)
	}

	room.BasePrice = 99.999
	got = room.PriceFor(NewStay(date("2024-03-01"), date("2024-03-02")))
	if got != 100 {
		t.Errorf("PriceFor() = %v, want rounded 100", got)
	}
}
