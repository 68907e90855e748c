package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRecordNotFound indicates a record was not found by the given identifier.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord indicates a record that cannot be stored.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrUnsupportedArchive indicates an archive URL with an unknown scheme.
	ErrUnsupportedArchive = errors.New("unsupported archive url")
)

// RecordError wraps record-related errors with additional context.
type RecordError struct {
	Op       string // Operation being performed (e.g., "ByID", "Save")
	RecordID string
	Err      error
	Message  string
}

func (e *RecordError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for record %s: %s (%v)", e.Op, e.RecordID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for record %s: %v", e.Op, e.RecordID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for record errors.
func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecordError creates a new record error with context.
func NewRecordError(op, recordID string, err error) *RecordError {
	return &RecordError{
		Op:       op,
		RecordID: recordID,
		Err:      err,
	}
}

// IsRecordNotFound checks if an error indicates a record was not found.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
