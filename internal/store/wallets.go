package store

import (
	"context"
	"fmt"

	"finance-ledger/internal/models"

	"gorm.io/gorm"
)

// DeleteWallets removes the listed wallets userID owns and clears the walletId
// of every account that pointed at them. It returns the ids actually deleted.
func (s *Store) DeleteWallets(ctx context.Context, userID string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return deleted, nil
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := OwnedByUser("wallets")(userID)
		if err := tx.Model(&models.Wallet{}).Scopes(owned).
			Where("wallets.id IN ?", ids).
			Pluck("wallets.id", &deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		if err := tx.Model(&models.Account{}).
			Where("user_id = ? AND wallet_id IN ?", userID, deleted).
			Update("wallet_id", nil).Error; err != nil {
			return err
		}
		return tx.Scopes(owned).Where("wallets.id IN ?", deleted).Delete(&models.Wallet{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete wallets: %w", translate(err))
	}
	if deleted == nil {
		deleted = []string{}
	}
	return deleted, nil
}

// CheckWallet verifies that walletID, when set, belongs to userID.
func (s *Store) CheckWallet(ctx context.Context, userID string, walletID *string) error {
	if walletID == nil || *walletID == "" {
		return nil
	}
	ok, err := s.Wallets.Exists(ctx, userID, *walletID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "walletId", ID: *walletID}
	}
	return nil
}
