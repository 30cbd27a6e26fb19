// Package app wires documents, the event bus, settings and the
// detection manager into one application, and provides the
// create-data-URI command.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoActiveFile indicates the active document has no backing file.
	ErrNoActiveFile = errors.New("no active file")

	// ErrNoActiveDocument indicates no document is currently active.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentNotFound indicates a document was not found.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNotRunning indicates the application has not been started or
	// was shut down.
	ErrNotRunning = errors.New("application not running")

	// ErrAlreadyRunning indicates Start was called twice.
	ErrAlreadyRunning = errors.New("application already running")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "encode", "copy")
	Target string // Target of the operation (e.g., file path, document id)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
