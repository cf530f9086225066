package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Backup tracks an encrypted snapshot file written to the backup directory.
type Backup struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:191;index;not null"`
	FileName  string `gorm:"size:255;not null"`
	FilePath  string `gorm:"size:1024;not null"`
	Size      int64
	CreatedAt time.Time
}

func (b *Backup) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
