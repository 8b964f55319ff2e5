package service

import (
	"errors"
	"fmt"

	"github.com/da-pic/coffeepos/internal/auth"
)

var (
	// ErrNotAuthenticated is returned when no actor is logged in
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied is the kind every permission failure matches
	// via errors.Is, whether or not a specific capability is attached
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidCredentials is returned on a failed login; it does not
	// reveal whether the username or the password was wrong
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPersistence is the kind wrapping all backing-store failures
	ErrPersistence = errors.New("persistence failure")
)

// PermissionError reports which capability the current actor lacks.
// It matches ErrPermissionDenied with errors.Is.
type PermissionError struct {
	Capability auth.Capability
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: requires %s", e.Capability)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// denied builds the permission failure for a missing capability.
func denied(cap auth.Capability) error {
	return &PermissionError{Capability: cap}
}

// persistence wraps a backing-store failure so callers can match it by
// kind while keeping the cause chain.
func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
