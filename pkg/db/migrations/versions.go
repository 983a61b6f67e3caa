package migrations

import (
	"gorm.io/gorm"

	"orphansweep/pkg/db/models"
)

func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create fingerprints table with digest index",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Fingerprint{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Fingerprint{})
			},
		},
	}
}
