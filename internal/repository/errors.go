package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrConflict is returned when an insert or update trips a unique constraint.
// Services map it to the user-facing conflict outcome instead of letting a
// raw driver error bubble up as a 500.
var ErrConflict = errors.New("unique constraint violation")

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
