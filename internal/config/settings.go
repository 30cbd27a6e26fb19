package config

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/urilens/internal/detect"
)

// Setting keys.
const (
	KeyActiveScopes   = "active_scopes"
	KeyCheckTimeout   = "check_timeout"
	KeyHighlightColor = "highlight_color"
)

// DefaultHighlightColor is a muted grey close to a typical comment colour.
const DefaultHighlightColor = "#7f848e"

// Settings is the effective urilens configuration.
type Settings struct {
	// ActiveScopes lists the scope selectors whose buffers are scanned.
	// Empty means no buffer is scanned.
	ActiveScopes []string

	// CheckTimeout is the debounce delay in seconds.
	CheckTimeout float64

	// HighlightColor is the hex colour used to mark regions.
	HighlightColor string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		ActiveScopes:   []string{},
		CheckTimeout:   detect.DefaultCheckTimeout.Seconds(),
		HighlightColor: DefaultHighlightColor,
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.ActiveScopes = slices.Clone(s.ActiveScopes)
	if out.ActiveScopes == nil {
		out.ActiveScopes = []string{}
	}
	return out
}

// Equal reports whether s and o describe the same configuration.
func (s Settings) Equal(o Settings) bool {
	return slices.Equal(s.ActiveScopes, o.ActiveScopes) &&
		s.CheckTimeout == o.CheckTimeout &&
		strings.EqualFold(s.HighlightColor, o.HighlightColor)
}

// Timeout returns CheckTimeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.CheckTimeout * float64(time.Second))
}

// Color parses HighlightColor.
func (s Settings) Color() (colorful.Color, error) {
	c, err := colorful.Hex(s.HighlightColor)
	if err != nil {
		return colorful.Color{}, &ValidationError{
			Key:     KeyHighlightColor,
			Value:   s.HighlightColor,
			Message: "must be a hex colour like #7f848e",
		}
	}
	return c, nil
}

// Detect converts s into detection settings.
func (s Settings) Detect() detect.Settings {
	return detect.Settings{
		ActiveScopes: slices.Clone(s.ActiveScopes),
		CheckTimeout: s.Timeout(),
	}
}

// Validate checks every setting and returns the first problem found.
func (s Settings) Validate() error {
	if math.IsNaN(s.CheckTimeout) || math.IsInf(s.CheckTimeout, 0) || s.CheckTimeout < 0 {
		return &ValidationError{
			Key:     KeyCheckTimeout,
			Value:   s.CheckTimeout,
			Message: "must be a finite number of seconds >= 0",
		}
	}
	for _, sel := range s.ActiveScopes {
		if strings.TrimSpace(sel) == "" {
			return &ValidationError{
				Key:     KeyActiveScopes,
				Value:   s.ActiveScopes,
				Message: "selectors must not be empty",
			}
		}
	}
	if _, err := s.Color(); err != nil {
		return err
	}
	return nil
}

// apply overlays the recognized keys of m onto s.
// It returns the sorted list of keys it did not recognize.
func (s *Settings) apply(m map[string]any) (unknown []string, err error) {
	for key, raw := range m {
		switch key {
		case KeyActiveScopes:
			scopes, err := toStrings(raw)
			if err != nil {
				return nil, &ValidationError{Key: key, Value: raw, Message: err.Error()}
			}
			s.ActiveScopes = scopes
		case KeyCheckTimeout:
			secs, err := toSeconds(raw)
			if err != nil {
				return nil, &ValidationError{Key: key, Value: raw, Message: err.Error()}
			}
			s.CheckTimeout = secs
		case KeyHighlightColor:
			str, ok := raw.(string)
			if !ok {
				return nil, &ValidationError{Key: key, Value: raw, Message: "must be a string"}
			}
			s.HighlightColor = strings.TrimSpace(str)
		default:
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown, nil
}

func toStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings, found %T", item)
			}
			out = append(out, strings.TrimSpace(str))
		}
		return out, nil
	case string:
		return splitList(t), nil
	default:
		return nil, fmt.Errorf("must be a list of strings, found %T", v)
	}
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toSeconds(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case time.Duration:
		return t.Seconds(), nil
	case string:
		t = strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, nil
		}
		if d, err := time.ParseDuration(t); err == nil {
			return d.Seconds(), nil
		}
		return 0, fmt.Errorf("must be a number of seconds or a duration")
	default:
		return 0, fmt.Errorf("must be a number of seconds, found %T", v)
	}
}
