package config

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when the configuration file is not well-formed.
	ErrParse = errors.New("parse build config")
	// ErrFieldMissing means a required field is absent or empty.
	ErrFieldMissing = errors.New("not found or empty")
	// ErrFieldType means a field holds a value of the wrong type.
	ErrFieldType = errors.New("has an invalid type")
	// ErrInvalidPath means a path field does not point at the expected kind of entry.
	ErrInvalidPath = errors.New("is not a valid path")
)

// ValidationError names the offending field and the rule it violated.
type ValidationError struct {
	// Field is the configuration key.
	Field string
	// Err is one of ErrFieldMissing, ErrFieldType or ErrInvalidPath.
	Err error
	// Hint describes what a valid value looks like.
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("config field %q %v", e.Field, e.Err)
	}

	return fmt.Sprintf("config field %q %v: %s", e.Field, e.Err, e.Hint)
}

// Unwrap exposes the rule sentinel for errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error, hint string) error {
	return &ValidationError{
		Field: field,
		Err:   err,
		Hint:  hint,
	}
}
