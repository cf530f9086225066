package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups transactions for reporting.
type Category struct {
	ID      string  `gorm:"primaryKey;size:36" json:"id"`
	PlaidID *string `gorm:"size:128" json:"plaidId"`
	Name    string  `gorm:"not null" json:"name"`
	UserID  string  `gorm:"size:191;index;not null" json:"userId"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
