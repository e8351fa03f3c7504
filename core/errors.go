package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports malformed or out-of-range input. The operation is aborted before any mutation.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// ConflictError reports that a uniqueness invariant would be violated.
type ConflictError struct {
	Err error
}

func NewConflictError(err error) error {
	return &ConflictError{err}
}

func (err ConflictError) Error() string { return err.Err.Error() }
func (err ConflictError) Unwrap() error { return err.Err }

// NotFoundError reports a referenced id that does not exist where it is required.
type NotFoundError struct {
	Err error
}

func NewNotFoundError(err error) error {
	return &NotFoundError{err}
}

func (err NotFoundError) Error() string { return err.Err.Error() }
func (err NotFoundError) Unwrap() error { return err.Err }

// CapacityError reports an enrollment attempted against a full course.
type CapacityError struct {
	Err error
}

func NewCapacityError(err error) error {
	return &CapacityError{err}
}

func (err CapacityError) Error() string { return err.Err.Error() }
func (err CapacityError) Unwrap() error { return err.Err }

// StorageError is a filesystem failure on the file at Path.
type StorageError struct {
	Path string
	Err  error
}

func NewStorageError(path string, err error) error {
	return &StorageError{Path: path, Err: err}
}

func (err StorageError) Error() string {
	return "storage: " + err.Path + ": " + err.Err.Error()
}

func (err StorageError) Unwrap() error { return err.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target *CapacityError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
