package dataroom

import (
	"errors"
	"fmt"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/validation"
)

// ErrorKind classifies a failed service call.
type ErrorKind string

const (
	// KindValidation covers bad names, oversized files and unsupported types
	KindValidation ErrorKind = "validation"

	// KindDuplicateName means a sibling already uses the name (ignoring case)
	KindDuplicateName ErrorKind = "duplicate_name"

	// KindNotFound means the item or its declared parent doesn't exist, or
	// exists with the wrong variant
	KindNotFound ErrorKind = "not_found"

	// KindStorage wraps failures of the underlying item store
	KindStorage ErrorKind = "storage"
)

// Error is the typed form of a failed result, for callers that prefer Go
// errors over inspecting the envelope.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Result is the uniform envelope returned by every service operation.
//
// Exactly one of Data (on success) or Error/Kind (on failure) is meaningful.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// Err returns nil for a successful result and an *Error otherwise.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Message: r.Error}
}

// DeleteResult is returned by folder deletion.
//
// DeletedIDs lists every item removed, including on a partial failure.
type DeleteResult struct {
	Success    bool      `json:"success"`
	DeletedIDs []string  `json:"deletedIds,omitempty"`
	Error      string    `json:"error,omitempty"`
	Kind       ErrorKind `json:"kind,omitempty"`
}

// Err returns nil for a successful result and an *Error otherwise.
func (r DeleteResult) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Message: r.Error}
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalid(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// storageError wraps a store failure with the operation that hit it.
func storageError(action string, err error) error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf("failed to %s: %v", action, err)}
}

// classify maps any error raised inside a service call onto the taxonomy.
func classify(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var vErr *validation.Error
	if errors.As(err, &vErr) {
		if vErr.Kind == validation.KindDuplicate {
			return &Error{Kind: KindDuplicateName, Message: vErr.Message}
		}
		return &Error{Kind: KindValidation, Message: vErr.Message}
	}

	if store.IsNotFound(err) {
		return &Error{Kind: KindNotFound, Message: err.Error()}
	}

	return &Error{Kind: KindStorage, Message: err.Error()}
}
