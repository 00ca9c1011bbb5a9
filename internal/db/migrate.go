package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/campus-union/voicebox/internal/models"
)

// Migrate creates or updates the schema for all application models.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.Message{},
		&models.Admin{},
		&models.AnalyticsDay{},
	)
}
