package application

import (
	"errors"
	"fmt"
)

// Error kinds. The HTTP layer maps each kind to one status code.
var (
	ErrConflict            = errors.New("conflict")
	ErrEventFull           = errors.New("event is full")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("could not validate credentials")
	ErrInactiveUser        = errors.New("inactive user")
	ErrIdentityUnavailable = errors.New("authentication service unavailable")
	ErrValidation          = errors.New("validation failed")
)

// Specific errors, each wrapping its kind.
var (
	ErrEmailTaken        = kindError(ErrConflict, "email already registered")
	ErrUsernameTaken     = kindError(ErrConflict, "username already taken")
	ErrAlreadyRegistered = kindError(ErrConflict, "already registered for this event")

	ErrUserNotFound         = kindError(ErrNotFound, "user not found")
	ErrEventNotFound        = kindError(ErrNotFound, "event not found")
	ErrRegistrationNotFound = kindError(ErrNotFound, "registration not found")
	ErrNotificationNotFound = kindError(ErrNotFound, "notification not found")

	ErrNotOrganizer = kindError(ErrForbidden, "not authorized to modify this event")

	ErrInvalidCredentials = kindError(ErrUnauthorized, "incorrect username or password")
	ErrInvalidToken       = kindError(ErrUnauthorized, "invalid token")

	ErrAvatarStorageDisabled = errors.New("avatar storage not configured")
)

type kinded struct {
	kind error
	msg  string
}

func (e *kinded) Error() string { return e.msg }
func (e *kinded) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kinded{kind: kind, msg: msg}
}

// ValidationError carries a per-field message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// CheckPage enforces skip >= 0 and 1 <= limit <= MaxLimit.
func CheckPage(skip, limit int) error {
	if skip < 0 {
		return invalid("skip", "must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxLimit {
		return invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}
	return nil
}
