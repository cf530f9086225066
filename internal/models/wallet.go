package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is an on-chain address a user tracks. An address is unique per user,
// enforced by idx_wallets_user_address.
type Wallet struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID     *string   `gorm:"size:36;index" json:"accountId"`
	UserID        string    `gorm:"size:191;not null;uniqueIndex:idx_wallets_user_address" json:"userId"`
	WalletAddress string    `gorm:"size:42;not null;uniqueIndex:idx_wallets_user_address" json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`

	Account *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
