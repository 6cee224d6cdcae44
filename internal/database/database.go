package database

import (
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kanban/internal/config"
)

func Connect(c *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	log.Debug("GORM connected to database")

	return db, nil
}

// Migrate creates or updates the schema on startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Board{},
		&Group{},
		&Task{},
		&Attachment{},
	)
}
