package dal

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrUnsupportedOperation: the uri is recognized but the requested
	// operation is not valid for its shape. A programming error in the caller.
	ErrUnsupportedOperation = errors.New("unsupported operation for uri")
	// ErrInvalidArgument: an empty or out-of-vocabulary required parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConstraintViolation: store-level uniqueness or foreign-key failure.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStoreUnavailable: connection or transaction level failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// mapWriteErr classifies an error from a write statement. Constraint
// failures keep their sqlite detail attached so callers see which index
// fired.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		if sqliteErr.Code == 19 {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
