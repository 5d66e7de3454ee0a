package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrCaseTypeSet indicates an attempt to overwrite an established case type
	ErrCaseTypeSet = errors.New("case type already set")

	// ErrServiceUnavailable indicates an external service call failed
	ErrServiceUnavailable = errors.New("external service unavailable")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)
