package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a bank, cash or crypto account that transactions are booked against.
type Account struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	PlaidID  *string `gorm:"size:128" json:"plaidId"`       // external bank-link id
	WalletID *string `gorm:"size:36;index" json:"walletId"` // plain column, cleared when the wallet is deleted
	Name     string  `gorm:"not null" json:"name"`
	UserID   string  `gorm:"size:191;index;not null" json:"userId"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
