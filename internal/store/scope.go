package store

import (
	"finance-ledger/internal/models"

	"gorm.io/gorm"
)

// Scope restricts a query to the rows owned by one user. Every read, update
// and delete a Repo issues goes through its Scope.
type Scope func(userID string) func(*gorm.DB) *gorm.DB

// OwnedByUser scopes tables carrying their own user_id column.
func OwnedByUser(table string) Scope {
	return func(userID string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(table+".user_id = ?", userID)
		}
	}
}

// OwnedThroughAccount scopes tables whose owner is the owner of account_id.
func OwnedThroughAccount(table string) Scope {
	return func(userID string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			owned := db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Account{}).
				Select("id").
				Where("user_id = ?", userID)
			return db.Where(table+".account_id IN (?)", owned)
		}
	}
}
