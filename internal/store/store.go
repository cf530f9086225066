package store

import (
	"finance-ledger/internal/models"

	"gorm.io/gorm"
)

// Store bundles the owner-scoped repositories: the four resource tables plus
// the per-user backup and audit records.
type Store struct {
	DB           *gorm.DB
	Accounts     *Repo[models.Account]
	Categories   *Repo[models.Category]
	Wallets      *Repo[models.Wallet]
	Transactions *Repo[models.Transaction]
	Backups      *Repo[models.Backup]
	AuditLogs    *Repo[models.AuditLog]
	Users        *Users
}

func New(db *gorm.DB) *Store {
	return &Store{
		DB:           db,
		Accounts:     NewRepo[models.Account](db, "accounts", OwnedByUser("accounts")),
		Categories:   NewRepo[models.Category](db, "categories", OwnedByUser("categories")),
		Wallets:      NewRepo[models.Wallet](db, "wallets", OwnedByUser("wallets")),
		Transactions: NewRepo[models.Transaction](db, "transactions", OwnedThroughAccount("transactions")),
		Backups:      NewRepo[models.Backup](db, "backups", OwnedByUser("backups")),
		AuditLogs:    NewRepo[models.AuditLog](db, "audit_logs", OwnedByUser("audit_logs")),
		Users:        NewUsers(db),
	}
}
