package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to report it
type Kind string

const (
	// KindMissingPrerequisite means a required tool, identity or credential is absent.
	// Nothing has been mutated when this is returned.
	KindMissingPrerequisite Kind = "missing_prerequisite"

	// KindRemoteOperation covers fork, clone, pull request, push and API failures
	KindRemoteOperation Kind = "remote_operation"

	// KindMalformedProgress means an existing progress file could not be decoded
	KindMalformedProgress Kind = "malformed_progress"

	// KindConfig means the root configuration is missing or unreadable
	KindConfig Kind = "config"
)

// OperationError represents an error that occurred during an operation
type OperationError struct {
	Op   string // The operation being performed
	Kind Kind   // Classification, may be empty
	Err  error  // The underlying error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// New creates a new OperationError
func New(op string, err error) *OperationError {
	return &OperationError{
		Op:  op,
		Err: err,
	}
}

// NewKind creates a new classified OperationError
func NewKind(kind Kind, op string, err error) *OperationError {
	return &OperationError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// Is implements error matching for OperationError
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return e.Op == t.Op
}

// KindOf returns the kind of the outermost classified OperationError in the chain
func KindOf(err error) Kind {
	for err != nil {
		var opErr *OperationError
		if !stderrors.As(err, &opErr) {
			return ""
		}
		if opErr.Kind != "" {
			return opErr.Kind
		}
		err = opErr.Err
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var opErr *OperationError
		if !stderrors.As(err, &opErr) {
			return false
		}
		if opErr.Kind == kind {
			return true
		}
		err = opErr.Err
	}
	return false
}
