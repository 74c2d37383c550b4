package domain

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint would be violated.
	ErrConflict = errors.New("already exists")
	// ErrValidation marks invalid input; wrap it with the offending field.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an authenticated caller acting outside its permissions.
	ErrForbidden = errors.New("forbidden")
)
