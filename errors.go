package devfft

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by plan construction and expression evaluation.
var (
	// ErrConfiguration is returned for invalid plan parameters: a dimension
	// count outside 1-3, a non-positive length, or an empty queue list.
	ErrConfiguration = errors.New("devfft: invalid plan configuration")

	// ErrUnsupported is returned for operations the engine integration does
	// not implement: negated or accumulating assignment, and execution
	// across more than one queue.
	ErrUnsupported = errors.New("devfft: unsupported operation")

	// ErrExprConsumed is returned when an expression is evaluated a second
	// time. Expressions are single-use.
	ErrExprConsumed = errors.New("devfft: expression already evaluated")

	// ErrPlanClosed is returned when a closed plan is used.
	ErrPlanClosed = errors.New("devfft: plan is closed")

	// ErrBackend matches any *BackendError via errors.Is.
	ErrBackend = errors.New("devfft: backend failure")
)

// BackendError reports a non-success status from a native engine call.
type BackendError struct {
	// Op names the engine operation that failed.
	Op string
	// Status is the native status code.
	Status Status
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("devfft: %s: native status %d", e.Op, e.Status)
}

func (e *BackendError) Unwrap() error { return ErrBackend }

// checkStatus maps a native status to a *BackendError, or nil on success.
func checkStatus(op string, st Status) error {
	if st == StatusSuccess {
		return nil
	}
	return &BackendError{Op: op, Status: st}
}
