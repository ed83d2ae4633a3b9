package repository

import "errors"

// StoreError represents a domain error from repository or cache operations.
//
// These are business logic errors (invalid argument, unpopulated cache, etc.)
// as opposed to infrastructure errors (network failure, disk error), which are
// wrapped and propagated as-is.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the repository path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a StoreError.
type ErrorCode int

const (
	// ErrNotFound indicates the requested file or folder doesn't exist.
	// Point lookups report absence as (nil, nil) instead; this code is used by
	// operations that need an existing target (e.g. listing children of an
	// unknown id).
	ErrNotFound ErrorCode = iota

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty name, name containing the separator
	ErrInvalidArgument

	// ErrNotDirectory indicates operation expected a folder but got a file
	ErrNotDirectory

	// ErrAlreadyExists indicates an entry with the name already exists
	ErrAlreadyExists

	// ErrIOError indicates an I/O error in the backing store
	ErrIOError

	// ErrNotPopulated indicates a cache mutation was attempted before the
	// cache was ever populated
	ErrNotPopulated

	// ErrUnavailable indicates the remote repository could not be reached
	ErrUnavailable
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNotDirectory:
		return "not a directory"
	case ErrAlreadyExists:
		return "already exists"
	case ErrIOError:
		return "i/o error"
	case ErrNotPopulated:
		return "not populated"
	case ErrUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// IsCode reports whether err (or any error it wraps) is a StoreError with code.
func IsCode(err error, code ErrorCode) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is an ErrNotFound StoreError.
func IsNotFound(err error) bool {
	return IsCode(err, ErrNotFound)
}
