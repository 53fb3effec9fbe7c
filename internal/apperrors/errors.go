package apperrors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors for the domain core. Services wrap these with context via
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	// ErrValidation marks malformed or out-of-range input, always rejected
	// before any write.
	ErrValidation = errors.New("invalid input")

	// ErrUnauthorized marks a missing or failed credential check.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden marks an authenticated but unauthorized actor.
	ErrForbidden = errors.New("operation not permitted")

	// ErrNotFound marks a referenced entity that is absent or soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrConflict marks a duplicate unique key where duplication is itself
	// invalid (e.g. a second review on the same recipe).
	ErrConflict = errors.New("duplicate record")
)

// FormatError reports duration text that could not be parsed. It carries the
// offending input so callers can surface it.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot parse duration from %q", e.Input)
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Unauthorizedf wraps ErrUnauthorized with a formatted message.
func Unauthorizedf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUnauthorized)
}

// Forbiddenf wraps ErrForbidden with a formatted message.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// IsNotFound reports whether err is a not-found condition, from either the
// domain sentinel or the underlying store.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Recoverable races (duplicate like or follow edge) are detected with this
// and absorbed; only uniqueness-as-validation surfaces as ErrConflict.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrConflict)
}

// IsFormat reports whether err is a duration parse failure.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
