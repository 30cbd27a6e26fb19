package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/urilens/internal/buffer"
	"github.com/dshills/urilens/internal/scope"
)

// Document is an open buffer with its display name.
type Document struct {
	*buffer.Buffer

	// Name is the display name (file name or "Untitled-N").
	Name string
}

// HasFile reports whether the document is backed by a file on disk.
func (d *Document) HasFile() bool {
	return d != nil && d.Path() != ""
}

// DocumentManager tracks open documents in open order.
type DocumentManager struct {
	mu        sync.RWMutex
	syntaxes  *scope.Registry
	documents map[string]*Document
	order     []string
	active    string
	counter   int
}

// NewDocumentManager creates a manager that assigns syntaxes from reg.
func NewDocumentManager(reg *scope.Registry) *DocumentManager {
	if reg == nil {
		reg = scope.DefaultRegistry()
	}
	return &DocumentManager{
		syntaxes:  reg,
		documents: make(map[string]*Document),
	}
}

// Open reads path and opens it. The document id is the absolute path.
// The second result is false when the file was already open, in which
// case the existing document is returned.
func (dm *DocumentManager) Open(path string) (*Document, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	dm.mu.Lock()
	if doc, ok := dm.documents[absPath]; ok {
		dm.active = absPath
		dm.mu.Unlock()
		return doc, false, nil
	}
	dm.mu.Unlock()

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, false, err
	}

	doc := &Document{
		Buffer: buffer.New(absPath,
			buffer.WithPath(absPath),
			buffer.WithContent(string(content)),
			buffer.WithSyntax(dm.syntaxes.ForFile(absPath).Path),
		),
		Name: filepath.Base(absPath),
	}
	return dm.add(doc), true, nil
}

// OpenScratch opens an unsaved document holding text. name only picks
// the syntax; scratch documents never have a backing file.
func (dm *DocumentManager) OpenScratch(name, text string) *Document {
	dm.mu.Lock()
	dm.counter++
	id := fmt.Sprintf("untitled-%d", dm.counter)
	dm.mu.Unlock()

	doc := &Document{
		Buffer: buffer.New(id,
			buffer.WithContent(text),
			buffer.WithSyntax(dm.syntaxes.ForFile(name).Path),
		),
		Name: fmt.Sprintf("Untitled-%d", dm.counter),
	}
	return dm.add(doc)
}

func (dm *DocumentManager) add(doc *Document) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if existing, ok := dm.documents[doc.ID()]; ok {
		dm.active = doc.ID()
		return existing
	}
	dm.documents[doc.ID()] = doc
	dm.order = append(dm.order, doc.ID())
	dm.active = doc.ID()
	return doc
}

// Get returns the document with id.
func (dm *DocumentManager) Get(id string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[id]
	return doc, ok
}

// Active returns the active document, or nil.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.documents[dm.active]
}

// SetActive makes id the active document.
func (dm *DocumentManager) SetActive(id string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if _, ok := dm.documents[id]; !ok {
		return ErrDocumentNotFound
	}
	dm.active = id
	return nil
}

// Close removes the document. The most recently opened remaining
// document becomes active.
func (dm *DocumentManager) Close(id string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, ok := dm.documents[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(dm.documents, id)
	for i, o := range dm.order {
		if o == id {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}
	if dm.active == id {
		dm.active = ""
		if n := len(dm.order); n > 0 {
			dm.active = dm.order[n-1]
		}
	}
	return nil
}

// List returns the open documents in open order.
func (dm *DocumentManager) List() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	out := make([]*Document, 0, len(dm.order))
	for _, id := range dm.order {
		out = append(out, dm.documents[id])
	}
	return out
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// Syntaxes returns the syntax registry.
func (dm *DocumentManager) Syntaxes() *scope.Registry {
	return dm.syntaxes
}
