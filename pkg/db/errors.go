package db

import (
	"errors"

	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"gorm.io/gorm"
)

// Classify maps GORM's translated sentinels onto typed errors and defers everything
// else to pkgerrors.Classify.
func Classify(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, message)
	default:
		return pkgerrors.Classify(err, message)
	}
}

// IsUniqueViolation reports whether err is a duplicate key after translation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return pkgerrors.CodeOf(pkgerrors.Classify(err, "")) == pkgerrors.CodeConflict
}
