package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// dropReservationRoomForeignKey lets reservations reference rooms owned by a remote
// catalog, which never appear in the local rooms table.
func dropReservationRoomForeignKey() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "004_drop_reservation_room_fk",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`ALTER TABLE reservations DROP CONSTRAINT IF EXISTS reservations_room_id_fkey`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				ALTER TABLE reservations
				ADD CONSTRAINT reservations_room_id_fkey FOREIGN KEY (room_id) REFERENCES rooms(id)
			`).Error
		},
	}
}
