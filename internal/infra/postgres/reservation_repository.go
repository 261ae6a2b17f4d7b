package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hotel-booking-service/internal/domain"
)

// ReservationRepository implements domain.ReservationRepository using PostgreSQL.
//
// The reservations table carries an exclusion constraint on (room_id, [check_in, check_out))
// for active statuses, so an overlapping insert or update fails even if the room lock was lost.
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new ReservationRepository.
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts a reservation and fills its generated fields.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	model := ReservationFromDomain(res)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return mapWriteError(err, res.RoomID, "creating reservation")
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt.UTC()
	res.UpdatedAt = model.UpdatedAt.UTC()

	return nil
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var model ReservationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		if isInvalidID(err) {
			return nil, domain.ErrNotFound
		}

		return nil, fmt.Errorf("getting reservation by id: %w", err)
	}

	return model.ToDomain(), nil
}

// Find returns reservations matching filter ordered by check-in.
func (r *ReservationRepository) Find(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	var models []ReservationModel

	if err := r.buildFindQuery(ctx, filter).Order("check_in ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("finding reservations: %w", err)
	}

	out := make([]*domain.Reservation, len(models))
	for i := range models {
		out[i] = models[i].ToDomain()
	}

	return out, nil
}

// Update writes the mutable fields of res if the stored status still equals expected.
func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation, expected domain.ReservationStatus) error {
	updatedAt := res.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND status = ?", res.ID, string(expected)).
		Updates(map[string]any{
			"status":       string(res.Status),
			"check_in":     res.CheckIn,
			"check_out":    res.CheckOut,
			"total_amount": res.TotalAmount,
			"updated_at":   updatedAt,
		})
	if result.Error != nil {
		return mapWriteError(result.Error, res.RoomID, "updating reservation")
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, res.ID); err != nil {
			return err
		}
		return domain.ErrConcurrentUpdate
	}

	res.UpdatedAt = updatedAt
	return nil
}

// Delete removes a reservation by ID.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ReservationModel{})
	if result.Error != nil {
		if isInvalidID(result.Error) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deleting reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *ReservationRepository) buildFindQuery(ctx context.Context, filter domain.ReservationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&ReservationModel{})

	if filter.RoomID != "" {
		query = query.Where("room_id = ?", filter.RoomID)
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}

	// Half-open overlap: existing.check_in < candidate.check_out AND existing.check_out > candidate.check_in
	if filter.Overlaps != nil {
		query = query.Where("check_in < ? AND check_out > ?", filter.Overlaps.CheckOut, filter.Overlaps.CheckIn)
	}

	if filter.ExcludeID != "" {
		query = query.Where("id <> ?", filter.ExcludeID)
	}

	if !filter.CheckOutBefore.IsZero() {
		query = query.Where("check_out < ?", filter.CheckOutBefore)
	}

	if !filter.CreatedBefore.IsZero() {
		query = query.Where("created_at < ?", filter.CreatedBefore)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	return query
}

// mapWriteError turns an exclusion violation into a BookingConflictError.
func mapWriteError(err error, roomID, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
		return &domain.BookingConflictError{RoomID: roomID}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
