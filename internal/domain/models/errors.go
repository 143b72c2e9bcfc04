package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any ledger mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a record, line or variety does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateBillNo is returned when a bill number is reused within a category.
	ErrDuplicateBillNo = errors.New("bill number already used for this category")

	// ErrDuplicateVariety is returned when a variety code already exists.
	ErrDuplicateVariety = errors.New("variety code already exists")

	// ErrVersionConflict is returned when a record changed since it was read.
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrPersistence marks failures of the storage layer.
	ErrPersistence = errors.New("persistence failure")

	// ErrNoEditSession is returned when saving or updating a line that is not being edited.
	ErrNoEditSession = errors.New("line is not being edited")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError carries the storage error verbatim.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Op, e.Err)
}

// Unwrap exposes both the persistence marker and the underlying cause.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// WrapPersistence wraps err as a PersistenceError unless it is nil or
// already one of the ledger's own sentinel errors.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateBillNo) ||
		errors.Is(err, ErrDuplicateVariety) || errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
