package database

import (
	"fmt"

	"finance-ledger/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
// gorm orders the tables by their foreign keys, so accounts and categories
// exist before wallets and transactions reference them.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Account{},
		&models.Category{},
		&models.Wallet{},
		&models.Transaction{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
