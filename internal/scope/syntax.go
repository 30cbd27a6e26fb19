package scope

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Syntax describes a language definition known to the host.
type Syntax struct {
	// Name is the display name, e.g. "CSS".
	Name string
	// Path identifies the syntax; buffers refer to their syntax by path.
	Path string
	// Scope is the base scope of documents using this syntax.
	Scope string
	// Extensions are file extensions without the leading dot.
	Extensions []string
}

// PlainText is the syntax used when nothing else matches.
var PlainText = Syntax{
	Name:       "Plain Text",
	Path:       "Packages/Text/Plain text.tmLanguage",
	Scope:      "text.plain",
	Extensions: []string{"txt"},
}

// Registry is a set of syntaxes. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byPath map[string]Syntax
	byExt  map[string]string
}

// NewRegistry creates a registry containing only PlainText.
func NewRegistry() *Registry {
	r := &Registry{
		byPath: make(map[string]Syntax),
		byExt:  make(map[string]string),
	}
	r.Register(PlainText)
	return r
}

// DefaultRegistry returns a registry with the common web and source syntaxes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range builtinSyntaxes {
		r.Register(s)
	}
	return r
}

var builtinSyntaxes = []Syntax{
	{Name: "CSS", Path: "Packages/CSS/CSS.sublime-syntax", Scope: "source.css", Extensions: []string{"css"}},
	{Name: "SCSS", Path: "Packages/Sass/SCSS.sublime-syntax", Scope: "source.scss", Extensions: []string{"scss"}},
	{Name: "Less", Path: "Packages/Less/Less.sublime-syntax", Scope: "source.less", Extensions: []string{"less"}},
	{Name: "HTML", Path: "Packages/HTML/HTML.sublime-syntax", Scope: "text.html.basic", Extensions: []string{"html", "htm", "xhtml"}},
	{Name: "Markdown", Path: "Packages/Markdown/Markdown.sublime-syntax", Scope: "text.html.markdown", Extensions: []string{"md", "markdown"}},
	{Name: "XML", Path: "Packages/XML/XML.sublime-syntax", Scope: "text.xml", Extensions: []string{"xml", "svg"}},
	{Name: "JavaScript", Path: "Packages/JavaScript/JavaScript.sublime-syntax", Scope: "source.js", Extensions: []string{"js", "mjs", "cjs", "jsx"}},
	{Name: "TypeScript", Path: "Packages/JavaScript/TypeScript.sublime-syntax", Scope: "source.ts", Extensions: []string{"ts", "tsx"}},
	{Name: "JSON", Path: "Packages/JSON/JSON.sublime-syntax", Scope: "source.json", Extensions: []string{"json"}},
	{Name: "YAML", Path: "Packages/YAML/YAML.sublime-syntax", Scope: "source.yaml", Extensions: []string{"yaml", "yml"}},
	{Name: "TOML", Path: "Packages/TOML/TOML.sublime-syntax", Scope: "source.toml", Extensions: []string{"toml"}},
	{Name: "Go", Path: "Packages/Go/Go.sublime-syntax", Scope: "source.go", Extensions: []string{"go"}},
	{Name: "Python", Path: "Packages/Python/Python.sublime-syntax", Scope: "source.python", Extensions: []string{"py"}},
}

// Register adds or replaces a syntax. Extensions claimed by an earlier
// syntax are taken over by the new one.
func (r *Registry) Register(s Syntax) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byPath[s.Path] = s
	for _, ext := range s.Extensions {
		r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = s.Path
	}
}

// ByPath returns the syntax registered under path.
func (r *Registry) ByPath(path string) (Syntax, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPath[path]
	return s, ok
}

// ForFile picks a syntax by file extension, falling back to PlainText.
func (r *Registry) ForFile(name string) Syntax {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if path, ok := r.byExt[ext]; ok {
		if s, ok := r.byPath[path]; ok {
			return s
		}
	}
	return r.byPath[PlainText.Path]
}

// List returns all syntaxes ordered by path.
func (r *Registry) List() []Syntax {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Syntax, 0, len(r.byPath))
	for _, s := range r.byPath {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
