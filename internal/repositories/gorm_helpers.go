package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// gormLookupError maps a failed First/Take into ErrNotFound or a wrapped driver error.
func gormLookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// gormWriteError maps unique-constraint violations into ErrDuplicate.
// The DB must be opened with TranslateError enabled.
func gormWriteError(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to %s: %w", action, ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// gormAffected turns a zero-row update/delete into ErrNotFound.
func gormAffected(res *gorm.DB, action, what string) error {
	if res.Error != nil {
		return fmt.Errorf("failed to %s: %w", action, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s for %s: %w", what, action, ErrNotFound)
	}
	return nil
}
