package store

import (
	"context"
	"fmt"
	"time"

	"finance-ledger/internal/models"

	"gorm.io/gorm"
)

// Users stores the built-in identity provider's users and sessions. These
// rows are not owner-scoped: they are the owners.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// FindByUsername matches usernames case-insensitively.
func (u *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).Take(&user).Error; err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, translate(err))
	}
	return &user, nil
}

func (u *Users) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, translate(err))
	}
	return &user, nil
}

// Create inserts user unless the name is taken in any letter case.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return fmt.Errorf("create user %q: %w", user.Username, translate(err))
	}
	return nil
}

// Update writes the given columns of user id.
func (u *Users) Update(ctx context.Context, id string, values map[string]any) error {
	res := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateSession records a login; its id becomes the token's jti.
func (u *Users) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (*models.Session, error) {
	s := &models.Session{UserID: userID, ExpiresAt: expiresAt}
	if err := u.db.WithContext(ctx).Omit("User").Create(s).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", translate(err))
	}
	return s, nil
}

// RevokeSession invalidates one session of userID.
func (u *Users) RevokeSession(ctx context.Context, userID, sessionID string) error {
	err := u.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke session: %w", translate(err))
	}
	return nil
}

// RevokeAllSessions invalidates every session of userID.
func (u *Users) RevokeAllSessions(ctx context.Context, userID string) error {
	err := u.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", translate(err))
	}
	return nil
}
