package encode

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMediaType is used when a file's type cannot be determined.
const DefaultMediaType = "text/plain"

// FileSystem reads files for the encoder.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// TypeLookup maps a file extension (with leading dot) to a media type.
// It returns "" when the extension is unknown.
type TypeLookup func(ext string) string

// Encoder turns files into data URIs.
type Encoder struct {
	fs     FileSystem
	lookup TypeLookup
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithFileSystem sets the file system files are read from.
func WithFileSystem(fs FileSystem) Option {
	return func(e *Encoder) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithTypeLookup sets the extension to media type lookup.
func WithTypeLookup(lookup TypeLookup) Option {
	return func(e *Encoder) {
		if lookup != nil {
			e.lookup = lookup
		}
	}
}

// NewEncoder creates an encoder reading from the OS file system and using
// the mime package's extension table.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		fs:     osFS{},
		lookup: mime.TypeByExtension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MediaType returns the media type for path, without parameters.
func (e *Encoder) MediaType(path string) string {
	t := e.lookup(filepath.Ext(path))
	if t == "" {
		return DefaultMediaType
	}
	if base, _, err := mime.ParseMediaType(t); err == nil {
		return base
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return DefaultMediaType
	}
	return t
}

// Encode reads the file at path and returns it as a data URI.
// Read failures are returned as *IOError.
func (e *Encoder) Encode(path string) (string, error) {
	if path == "" {
		return "", ErrNoPath
	}

	mediaType := e.MediaType(path)
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	return EncodeBytes(mediaType, data), nil
}

// Encode reads the file at path with a default Encoder.
func Encode(path string) (string, error) {
	return NewEncoder().Encode(path)
}

// IsBinary returns true if content of mediaType is base64 encoded.
func IsBinary(mediaType string) bool {
	return !strings.HasPrefix(mediaType, "text/")
}

// EncodeBytes formats data as a data URI of the given media type.
func EncodeBytes(mediaType string, data []byte) string {
	if IsBinary(mediaType) {
		return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return "data:" + mediaType + "," + Quote(data)
}

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes every byte except ASCII letters, digits, '_', '.',
// '-', '~' and '/'.
func Quote(data []byte) string {
	n := 0
	for _, c := range data {
		if !unreserved(c) {
			n++
		}
	}
	if n == 0 {
		return string(data)
	}

	var sb strings.Builder
	sb.Grow(len(data) + 2*n)
	for _, c := range data {
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}
