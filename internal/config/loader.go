package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// EnvPrefix prefixes every environment variable urilens reads.
const EnvPrefix = "URILENS_"

// FileSystem abstracts file access for loading settings.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Format identifies a settings file syntax.
type Format int

const (
	// FormatUnknown is an unsupported extension.
	FormatUnknown Format = iota
	// FormatTOML is a .toml file.
	FormatTOML
	// FormatJSON is a .json or .sublime-settings file. Comments and
	// trailing commas are accepted.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json", ".sublime-settings":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// LoadFile reads the settings file at path into a map.
// A missing file yields a nil map and no error.
func LoadFile(fsys FileSystem, path string) (map[string]any, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	return Parse(format, path, data)
}

// Parse decodes settings data in the given format. source names the
// data in error messages.
func Parse(format Format, source string, data []byte) (map[string]any, error) {
	switch format {
	case FormatTOML:
		return parseTOML(source, data)
	case FormatJSON:
		return parseJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, source)
	}
}

func parseTOML(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	if config == nil {
		config = map[string]any{}
	}
	return config, nil
}

func parseJSON(source string, data []byte) (map[string]any, error) {
	clean := jsonc.ToJSON(data)
	if len(strings.TrimSpace(string(clean))) == 0 {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(clean) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}

	result := gjson.ParseBytes(clean)
	if !result.IsObject() {
		return nil, &ParseError{Path: source, Message: "top level must be an object"}
	}
	config, ok := result.Value().(map[string]any)
	if !ok {
		return nil, &ParseError{Path: source, Message: "top level must be an object"}
	}
	return config, nil
}

// envKeys maps environment variables to setting keys.
var envKeys = map[string]string{
	EnvPrefix + "ACTIVE_SCOPES":   KeyActiveScopes,
	EnvPrefix + "CHECK_TIMEOUT":   KeyCheckTimeout,
	EnvPrefix + "HIGHLIGHT_COLOR": KeyHighlightColor,
}

// LoadEnv collects settings from the environment using lookup, which
// defaults to os.LookupEnv. Values stay strings; the settings layer
// converts them.
func LoadEnv(lookup func(string) (string, bool)) map[string]any {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	config := make(map[string]any)
	for env, key := range envKeys {
		if val, ok := lookup(env); ok {
			config[key] = val
		}
	}
	return config
}
