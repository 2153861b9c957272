package database

import (
	"irigasi/internal/models"
	"irigasi/pkg/logger"
)

// Migrate runs AutoMigrate for every model
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.User{},
		&models.LoginAudit{},
		// content
		&models.News{},
		&models.Gallery{},
		&models.Slider{},
		&models.ContactSubmission{},
		&models.FarmerGroup{},
		// measurements
		&models.WaterLevel{},
		&models.Rainfall{},
		&models.CropData{},
	)
	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
