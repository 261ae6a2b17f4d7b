package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createReservationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_reservations",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS reservations (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					room_id VARCHAR(64) NOT NULL REFERENCES rooms(id),
					owner_id VARCHAR(64) NOT NULL,
					check_in TIMESTAMPTZ NOT NULL,
					check_out TIMESTAMPTZ NOT NULL,
					guests INTEGER NOT NULL CHECK (guests > 0),
					total_amount DECIMAL(12,2) NOT NULL,
					status VARCHAR(20) NOT NULL
						CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
					special_request TEXT,
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,

					CONSTRAINT chk_reservations_stay CHECK (check_in < check_out)
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_reservations_room_stay ON reservations(room_id, check_in, check_out);",
				"CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status);",
				"CREATE INDEX IF NOT EXISTS idx_reservations_owner ON reservations(owner_id);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS reservations;").Error
		},
	}
}
