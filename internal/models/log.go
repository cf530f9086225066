package models

import "time"

// AuditLog records mutating requests made by authenticated users.
// PathEnc and ActionEnc hold AES+base64 ciphertext when an encryption key is
// configured and plain text otherwise.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:191;index;not null"`
	Method    string `gorm:"size:16"`
	PathEnc   string `gorm:"size:1024"`
	ActionEnc string `gorm:"size:4096"` // method + path + truncated request body
	Status    int
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
