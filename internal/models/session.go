package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session stores user login sessions (for logout, invalidation, audit).
// The session id is the jti claim of the issued token.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
