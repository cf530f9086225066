package store

import (
	"context"
	"fmt"
	"time"

	"finance-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is every resource row one user owns.
type Snapshot struct {
	UserID       string               `json:"userId"`
	CreatedAt    time.Time            `json:"createdAt"`
	Accounts     []models.Account     `json:"accounts"`
	Categories   []models.Category    `json:"categories"`
	Wallets      []models.Wallet      `json:"wallets"`
	Transactions []models.Transaction `json:"transactions"`
}

func (s *Store) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	snap := &Snapshot{UserID: userID, CreatedAt: time.Now().UTC()}
	var err error
	if snap.Accounts, err = s.Accounts.List(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Categories, err = s.Categories.List(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Wallets, err = s.Wallets.List(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Transactions, err = s.Transactions.List(ctx, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore replaces userID's data with snap inside one transaction. Every row is
// re-owned by userID and must only reference accounts, categories and wallets in snap.
func (s *Store) Restore(ctx context.Context, userID string, snap *Snapshot) error {
	accounts := make(map[string]bool, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts[a.ID] = true
	}
	categories := make(map[string]bool, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = true
	}
	wallets := make(map[string]bool, len(snap.Wallets))
	for _, w := range snap.Wallets {
		if w.AccountID != nil && !accounts[*w.AccountID] {
			return &ReferenceError{Field: "wallets.accountId", ID: *w.AccountID}
		}
		wallets[w.ID] = true
	}
	for _, a := range snap.Accounts {
		if a.WalletID != nil && !wallets[*a.WalletID] {
			return &ReferenceError{Field: "accounts.walletId", ID: *a.WalletID}
		}
	}
	for _, t := range snap.Transactions {
		if !accounts[t.AccountID] {
			return &ReferenceError{Field: "transactions.accountId", ID: t.AccountID}
		}
		if t.CategoryID != nil && !categories[*t.CategoryID] {
			return &ReferenceError{Field: "transactions.categoryId", ID: *t.CategoryID}
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(OwnedThroughAccount("transactions")(userID)).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(OwnedByUser("wallets")(userID)).Delete(&models.Wallet{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(OwnedByUser("accounts")(userID)).Delete(&models.Account{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(OwnedByUser("categories")(userID)).Delete(&models.Category{}).Error; err != nil {
			return err
		}

		for i := range snap.Accounts {
			snap.Accounts[i].UserID = userID
		}
		for i := range snap.Categories {
			snap.Categories[i].UserID = userID
		}
		for i := range snap.Wallets {
			snap.Wallets[i].UserID = userID
		}

		if err := createAll(tx, snap.Accounts); err != nil {
			return err
		}
		if err := createAll(tx, snap.Categories); err != nil {
			return err
		}
		if err := createAll(tx, snap.Wallets); err != nil {
			return err
		}
		return createAll(tx, snap.Transactions)
	})
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", translate(err))
	}
	return nil
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).CreateInBatches(&rows, 100).Error
}
