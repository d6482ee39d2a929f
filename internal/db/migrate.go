package db

import (
	"convenios-dashboard/internal/assignment"
	"convenios-dashboard/internal/edition"
	"convenios-dashboard/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables of the durable stores.
func Migrate(db *gorm.DB, zl *zap.Logger) error {
	err := db.AutoMigrate(
		&user.User{},
		&assignment.Assignment{},
		&edition.Edition{},
		&edition.HistoryEntry{},
	)
	if err != nil {
		return err
	}

	zl.Info("database schema migrated")
	return nil
}
