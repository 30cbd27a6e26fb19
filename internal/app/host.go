package app

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Status messages shown by the create-data-URI command.
const (
	StatusCopied      = "data URI copied!"
	StatusAccessError = "Unable to access file: "
)

// StatusReporter shows a one-line message to the user.
type StatusReporter interface {
	SetStatus(msg string)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a system clipboard utility was found.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}

// StatusLine keeps the latest status message. It is safe for concurrent
// use and is the default StatusReporter.
type StatusLine struct {
	mu  sync.Mutex
	msg string
}

// SetStatus implements StatusReporter.
func (s *StatusLine) SetStatus(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Status returns the latest message.
func (s *StatusLine) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}
