package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking-service/internal/domain"
)

// RoomRepository implements domain.RoomCatalog using PostgreSQL.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetByID retrieves a room by ID.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	var model RoomModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}

		return nil, fmt.Errorf("getting room by id: %w", err)
	}

	return model.ToDomain(), nil
}

// ListActive returns every room open for booking, ordered by number.
func (r *RoomRepository) ListActive(ctx context.Context) ([]*domain.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("number ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing active rooms: %w", err)
	}

	rooms := make([]*domain.Room, len(models))
	for i := range models {
		rooms[i] = models[i].ToDomain()
	}

	return rooms, nil
}

// BulkUpsert creates or updates rooms in a batch, keyed by ID.
func (r *RoomRepository) BulkUpsert(ctx context.Context, rooms []*domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]*RoomModel, len(rooms))
	for i, room := range rooms {
		models[i] = RoomFromDomain(room)
		models[i].UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"number", "max_occupancy", "base_price", "active", "updated_at"}),
	}).CreateInBatches(models, 100).Error
	if err != nil {
		return fmt.Errorf("bulk upserting rooms: %w", err)
	}

	return nil
}
