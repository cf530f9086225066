package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record not found")
)

// translate maps driver and gorm errors onto the store's sentinel errors.
// TranslateError covers sqlite and postgres; the message checks catch driver
// versions that do not translate.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"):
		return ErrInvalidReference
	}
	return err
}
