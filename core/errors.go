package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

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

// StorageReadError indicates that a persisted slot holds content that could
// not be deserialized. It is distinct from an absent slot: callers decide
// whether to surface it (roster) or recover by clearing the slot (sessions).
type StorageReadError struct {
	Slot string
	Err  error
}

func NewStorageReadError(slot string, err error) error {
	return &StorageReadError{Slot: slot, Err: err}
}

func (err StorageReadError) Error() string {
	return fmt.Sprintf("reading slot %q: %v", err.Slot, err.Err)
}

func IsStorageRead(err error) bool {
	_, ok := errors.Cause(err).(*StorageReadError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
