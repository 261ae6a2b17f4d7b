package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createRoomsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_rooms",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS rooms (
					id VARCHAR(64) PRIMARY KEY,
					number VARCHAR(20) NOT NULL,
					max_occupancy INTEGER NOT NULL CHECK (max_occupancy > 0),
					base_price DECIMAL(10,2) NOT NULL CHECK (base_price >= 0),
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_rooms_active ON rooms(active);").Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS rooms;").Error
		},
	}
}
