// Package buffer provides the text buffers urilens observes.
//
// A Buffer holds its content as an immutable string that is swapped on
// every edit, so a Snapshot is a constant-time copy that never changes
// underneath a reader, even while the buffer keeps being edited.
package buffer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Errors returned by buffer edits.
var (
	// ErrOutOfRange indicates an offset outside the buffer.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidRange indicates a range whose start is after its end.
	ErrInvalidRange = errors.New("invalid range")
)

// RevisionID increases by one on every edit.
type RevisionID uint64

// Snapshot is a read-only view of a buffer at one revision.
type Snapshot struct {
	text     string
	revision RevisionID
}

// Text returns the snapshot content.
func (s Snapshot) Text() string { return s.text }

// Revision returns the revision the snapshot was taken at.
func (s Snapshot) Revision() RevisionID { return s.revision }

// Len returns the byte length of the snapshot.
func (s Snapshot) Len() int { return len(s.text) }

// Substr returns the text in [start, end), clamped to the snapshot.
func (s Snapshot) Substr(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Buffer is an editable text document. It is safe for concurrent use.
type Buffer struct {
	id     string
	path   string
	syntax atomic.Value // string

	mu       sync.RWMutex
	text     string
	revision RevisionID
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithPath sets the backing file path. Buffers without one are untitled.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}

// WithContent sets the initial content.
func WithContent(text string) Option {
	return func(b *Buffer) {
		b.text = text
	}
}

// WithSyntax sets the syntax identifier.
func WithSyntax(syntax string) Option {
	return func(b *Buffer) {
		b.syntax.Store(syntax)
	}
}

// New creates a buffer with the given identity.
func New(id string, opts ...Option) *Buffer {
	b := &Buffer{id: id}
	b.syntax.Store("")
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID returns the buffer identity.
func (b *Buffer) ID() string { return b.id }

// Path returns the backing file path, or "" for untitled buffers.
func (b *Buffer) Path() string { return b.path }

// Syntax returns the syntax identifier.
func (b *Buffer) Syntax() string { return b.syntax.Load().(string) }

// SetSyntax changes the syntax identifier.
func (b *Buffer) SetSyntax(syntax string) { b.syntax.Store(syntax) }

// Snapshot returns the current content and revision.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{text: b.text, revision: b.revision}
}

// Text returns the current content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Substr returns the current text in [start, end), clamped to the buffer.
func (b *Buffer) Substr(start, end int) string {
	return b.Snapshot().Substr(start, end)
}

// Len returns the byte length of the content.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// Revision returns the current revision.
func (b *Buffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) RevisionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.revision++
	return b.revision
}

// Insert inserts text at offset.
func (b *Buffer) Insert(offset int, text string) (RevisionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > len(b.text) {
		return b.revision, fmt.Errorf("insert at %d: %w", offset, ErrOutOfRange)
	}
	b.text = b.text[:offset] + text + b.text[offset:]
	b.revision++
	return b.revision, nil
}

// Delete removes the text in [start, end).
func (b *Buffer) Delete(start, end int) (RevisionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start > end {
		return b.revision, fmt.Errorf("delete %d-%d: %w", start, end, ErrInvalidRange)
	}
	if start < 0 || end > len(b.text) {
		return b.revision, fmt.Errorf("delete %d-%d: %w", start, end, ErrOutOfRange)
	}
	b.text = b.text[:start] + b.text[end:]
	b.revision++
	return b.revision, nil
}

// Replace replaces the text in [start, end) with text.
func (b *Buffer) Replace(start, end int, text string) (RevisionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start > end {
		return b.revision, fmt.Errorf("replace %d-%d: %w", start, end, ErrInvalidRange)
	}
	if start < 0 || end > len(b.text) {
		return b.revision, fmt.Errorf("replace %d-%d: %w", start, end, ErrOutOfRange)
	}
	b.text = b.text[:start] + text + b.text[end:]
	b.revision++
	return b.revision, nil
}
