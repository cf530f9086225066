package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is a single booking on an account.
// Amount is stored in minor currency units (cents); negative values are expenses.
// A transaction has no owner column of its own: it belongs to whoever owns its account.
type Transaction struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Payee      string    `gorm:"not null" json:"payee"`
	Notes      *string   `json:"notes"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	AccountID  string    `gorm:"size:36;index;not null" json:"accountId"`
	CategoryID *string   `gorm:"size:36;index" json:"categoryId"`

	Account  *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
