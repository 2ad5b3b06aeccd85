package store

import "errors"

// StoreError represents a failure reported by an ItemStore implementation.
//
// Services translate StoreError codes into their own result taxonomy; any
// error that is not a StoreError is treated as an I/O failure.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// ID is the item id related to the error (if applicable)
	ID string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested item doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrUninitialized indicates an operation was attempted before Initialize
	ErrUninitialized

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: nil item, unknown item type
	ErrInvalidArgument

	// ErrIOError indicates the backing engine failed to read or write
	ErrIOError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrUninitialized:
		return "uninitialized"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// CodeOf extracts the ErrorCode from err. Errors that are not (or do not
// wrap) a *StoreError are reported as ErrIOError.
func CodeOf(err error) ErrorCode {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return ErrIOError
}

// IsNotFound reports whether err is a StoreError with code ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == ErrNotFound
}

// NewNotFoundError builds the error returned when an update targets an
// absent item.
func NewNotFoundError(id string) error {
	return &StoreError{Code: ErrNotFound, Message: "Item with id " + id + " not found"}
}

// NewUninitializedError builds the error returned by every operation that
// runs before Initialize.
func NewUninitializedError() error {
	return &StoreError{Code: ErrUninitialized, Message: "store is not initialized"}
}

// NewIOError wraps an engine failure.
func NewIOError(message string, err error) error {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &StoreError{Code: ErrIOError, Message: message}
}

// NewInvalidArgumentError builds an ErrInvalidArgument error.
func NewInvalidArgumentError(message string) error {
	return &StoreError{Code: ErrInvalidArgument, Message: message}
}
