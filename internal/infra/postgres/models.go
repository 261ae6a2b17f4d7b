package postgres

import (
	"time"

	"hotel-booking-service/internal/domain"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID           string    `gorm:"type:varchar(64);primaryKey"`
	Number       string    `gorm:"type:varchar(20);not null"`
	MaxOccupancy int       `gorm:"not null"`
	BasePrice    float64   `gorm:"type:decimal(10,2);not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for RoomModel.
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts RoomModel to domain.Room.
func (m *RoomModel) ToDomain() *domain.Room {
	return &domain.Room{
		ID:           m.ID,
		Number:       m.Number,
		MaxOccupancy: m.MaxOccupancy,
		BasePrice:    m.BasePrice,
		Active:       m.Active,
	}
}

// RoomFromDomain creates a RoomModel from domain.Room.
func RoomFromDomain(r *domain.Room) *RoomModel {
	return &RoomModel{
		ID:           r.ID,
		Number:       r.Number,
		MaxOccupancy: r.MaxOccupancy,
		BasePrice:    r.BasePrice,
		Active:       r.Active,
	}
}

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomID         string    `gorm:"type:varchar(64);not null;index"`
	OwnerID        string    `gorm:"type:varchar(64);not null;index"`
	CheckIn        time.Time `gorm:"type:timestamptz;not null"`
	CheckOut       time.Time `gorm:"type:timestamptz;not null"`
	Guests         int       `gorm:"not null"`
	TotalAmount    float64   `gorm:"type:decimal(12,2);not null"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	SpecialRequest string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for ReservationModel.
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts ReservationModel to domain.Reservation.
func (m *ReservationModel) ToDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:             m.ID,
		RoomID:         m.RoomID,
		OwnerID:        m.OwnerID,
		CheckIn:        m.CheckIn.UTC(),
		CheckOut:       m.CheckOut.UTC(),
		Guests:         m.Guests,
		TotalAmount:    m.TotalAmount,
		Status:         domain.ReservationStatus(m.Status),
		SpecialRequest: m.SpecialRequest,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

// ReservationFromDomain creates a ReservationModel from domain.Reservation.
func ReservationFromDomain(r *domain.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:             r.ID,
		RoomID:         r.RoomID,
		OwnerID:        r.OwnerID,
		CheckIn:        r.CheckIn,
		CheckOut:       r.CheckOut,
		Guests:         r.Guests,
		TotalAmount:    r.TotalAmount,
		Status:         string(r.Status),
		SpecialRequest: r.SpecialRequest,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
