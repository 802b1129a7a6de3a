package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

// ErrorMapper maps database errors raised outside repositories, such as begin and commit failures
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error. The original error stays in the chain
// text so transient failures can still be recognized for retries.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// errors that already carry domain meaning pass through
	var dbErr *errs.DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewDatabaseError(operation, errs.ErrNotFound, err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "could not serialize access") ||
		strings.Contains(errMsg, "lock timeout") ||
		strings.Contains(errMsg, "database is locked"):
		return errs.NewDatabaseError(operation, errs.ErrResourceLocked, err)

	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "foreign key constraint"):
		return errs.NewDatabaseError(operation, errs.ErrConstraintViolation, err)

	default:
		return errs.NewDatabaseError(operation, errs.ErrDatabaseConnection, err)
	}
}
