package services

import (
	"errors"
	"strings"

	"bscf_accounts/internal/validation"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrProfileIncomplete  = errors.New("profile not complete")
	ErrNotAdmin           = errors.New("admin role required")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrInvalidRole        = errors.New("invalid role specified")
	ErrKYCStatusRequired  = errors.New("kyc status is required")

	// ErrRoleUnavailable means a role needed by a workflow could not be
	// resolved. It aborts the workflow as an internal failure.
	ErrRoleUnavailable = errors.New("role could not be found or created")
)

// ValidationError reports the field-level messages of the entity that failed.
type ValidationError struct {
	Entity   string
	Messages []string
}

func (e *ValidationError) Error() string {
	return e.Entity + " is invalid: " + strings.Join(e.Messages, ", ")
}

func invalid(entity string, msgs ...string) *ValidationError {
	return &ValidationError{Entity: entity, Messages: msgs}
}

// check validates v and merges extra messages collected while building it.
func check(entity string, v interface{}, extra ...string) error {
	msgs := append(extra, validation.Struct(v)...)
	if len(msgs) == 0 {
		return nil
	}
	return invalid(entity, msgs...)
}
