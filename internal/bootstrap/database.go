package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"fitmarket/internal/models"
)

// Migrate ensures all tables this service writes exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.ServiceOrder{},
		&models.GymMembership{},
		&models.TrainerBooking{},
		&models.Transaction{},
		&models.Notification{},
		&models.Gym{},
		&models.OutboxEvent{},
	}
}
