// Package apperrors defines the recoverable error taxonomy shared by the
// repositories, services and HTTP handlers. Every error here carries a
// message safe to show to the end user.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or missing input the caller can correct.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateEmail signals a registration reusing an existing email.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrDuplicateUsername signals a registration reusing an existing username.
	ErrDuplicateUsername = errors.New("this username is already taken")

	// ErrUserNotFound signals that no user matches the given email or id.
	ErrUserNotFound = errors.New("no account found with this email")

	// ErrLinkNotFound signals that the requested profile link does not exist.
	ErrLinkNotFound = errors.New("link not found")

	// ErrInvalidCredentials signals an authentication password mismatch.
	ErrInvalidCredentials = errors.New("invalid password")

	// ErrForbidden signals an ownership violation on a mutation.
	ErrForbidden = errors.New("you do not own this link")

	// ErrStorageUnavailable signals a lower-level storage failure. The
	// attempted operation is aborted without partial effect.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Validation wraps ErrValidation with a field-specific reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
