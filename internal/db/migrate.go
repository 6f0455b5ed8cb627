package db

import (
	"fmt"

	"github.com/LoreWasTaken/caresync/internal/domain/adherence"
	"github.com/LoreWasTaken/caresync/internal/domain/caregiver"
	"github.com/LoreWasTaken/caresync/internal/domain/medication"
	"github.com/LoreWasTaken/caresync/internal/domain/user"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&medication.Medication{},
		&caregiver.Relationship{},
		&adherence.Record{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
