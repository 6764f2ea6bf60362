package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether the storage error means the record does
// not exist, regardless of the backing driver.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
