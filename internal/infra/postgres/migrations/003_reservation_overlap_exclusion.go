package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addReservationOverlapExclusion rejects two active reservations of the same room whose
// [check_in, check_out) ranges intersect with SQLSTATE 23P01.
func addReservationOverlapExclusion() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_reservation_overlap_exclusion",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				ALTER TABLE reservations
				ADD CONSTRAINT excl_reservations_room_overlap
				EXCLUDE USING gist (
					room_id WITH =,
					tstzrange(check_in, check_out, '[)') WITH &&
				)
				WHERE (status IN ('pending', 'confirmed'))
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`ALTER TABLE reservations DROP CONSTRAINT IF EXISTS excl_reservations_room_overlap`).Error
		},
	}
}
