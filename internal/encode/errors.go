package encode

import (
	"errors"
	"fmt"
)

// Errors returned by encoding and decoding.
var (
	// ErrNoPath indicates an encode request without a backing file.
	ErrNoPath = errors.New("no file path")

	// ErrNotDataURI indicates input that does not start with "data:".
	ErrNotDataURI = errors.New("not a data URI")

	// ErrMissingComma indicates a data URI without the payload separator.
	ErrMissingComma = errors.New("data URI has no comma")
)

// IOError reports a file that could not be read.
type IOError struct {
	Path string
	Err  error
}

// Error returns the underlying error message; it is shown to users as is.
func (e *IOError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// DecodeError reports a malformed payload.
type DecodeError struct {
	Base64 bool
	Err    error
}

func (e *DecodeError) Error() string {
	kind := "percent-encoded"
	if e.Base64 {
		kind = "base64"
	}
	return fmt.Sprintf("invalid %s payload: %v", kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
