package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownFormat indicates the settings file extension is not supported.
	ErrUnknownFormat = errors.New("unknown settings format")

	// ErrInvalidSetting indicates a setting value failed validation.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrClosed indicates the Config has been closed.
	ErrClosed = errors.New("config closed")
)

// ParseError represents an error while parsing a settings file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes a rejected setting value.
type ValidationError struct {
	// Key is the setting name.
	Key string
	// Value is the offending value.
	Value any
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Key, e.Message, e.Value)
}

// Is reports whether target is ErrInvalidSetting.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSetting
}
