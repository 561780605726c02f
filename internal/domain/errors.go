package domain

import "errors"

// Sentinel errors shared across services. Services wrap these with
// fmt.Errorf("...: %w", err) so callers can classify with errors.Is.
var (
	// ErrNotFound means a referenced event, request, category, or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means structurally invalid input reached the service layer.
	ErrValidation = errors.New("invalid input")
	// ErrForbidden means the caller lacks the required relationship to the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means the operation would violate a state invariant.
	ErrConflict = errors.New("conflict")
)
