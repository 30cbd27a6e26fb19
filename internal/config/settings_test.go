package config

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	s := Default()

	if len(s.ActiveScopes) != 0 {
		t.Errorf("ActiveScopes = %v, want empty", s.ActiveScopes)
	}
	if s.CheckTimeout != 2 {
		t.Errorf("CheckTimeout = %v, want 2", s.CheckTimeout)
	}
	if s.Timeout() != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", s.Timeout())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSettings_Apply(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		want    Settings
		unknown []string
	}{
		{
			name: "toml types",
			values: map[string]any{
				"active_scopes": []any{"source.css", " text.html "},
				"check_timeout": int64(1),
			},
			want: Settings{
				ActiveScopes:   []string{"source.css", "text.html"},
				CheckTimeout:   1,
				HighlightColor: DefaultHighlightColor,
			},
		},
		{
			name: "env strings",
			values: map[string]any{
				"active_scopes":   "source.css,,source.scss",
				"check_timeout":   "0.75",
				"highlight_color": " #ABCDEF ",
			},
			want: Settings{
				ActiveScopes:   []string{"source.css", "source.scss"},
				CheckTimeout:   0.75,
				HighlightColor: "#ABCDEF",
			},
		},
		{
			name: "duration string",
			values: map[string]any{
				"check_timeout": "1500ms",
			},
			want: Settings{
				ActiveScopes:   []string{},
				CheckTimeout:   1.5,
				HighlightColor: DefaultHighlightColor,
			},
		},
		{
			name: "unknown keys",
			values: map[string]any{
				"theme":         "dark",
				"font_size":     int64(12),
				"check_timeout": 3.0,
			},
			want: Settings{
				ActiveScopes:   []string{},
				CheckTimeout:   3,
				HighlightColor: DefaultHighlightColor,
			},
			unknown: []string{"font_size", "theme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			unknown, err := s.apply(tt.values)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if diff := cmp.Diff(tt.want, s); diff != "" {
				t.Errorf("settings mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.unknown, unknown); diff != "" {
				t.Errorf("unknown mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSettings_ApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		key    string
	}{
		{"scopes not strings", map[string]any{"active_scopes": []any{"a", int64(1)}}, KeyActiveScopes},
		{"scopes wrong type", map[string]any{"active_scopes": true}, KeyActiveScopes},
		{"timeout garbage", map[string]any{"check_timeout": "soon"}, KeyCheckTimeout},
		{"timeout wrong type", map[string]any{"check_timeout": []any{}}, KeyCheckTimeout},
		{"color wrong type", map[string]any{"highlight_color": int64(3)}, KeyHighlightColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			_, err := s.apply(tt.values)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Key != tt.key {
				t.Errorf("Key = %q, want %q", verr.Key, tt.key)
			}
			if !errors.Is(err, ErrInvalidSetting) {
				t.Errorf("errors.Is(err, ErrInvalidSetting) = false")
			}
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		key    string
	}{
		{"negative timeout", func(s *Settings) { s.CheckTimeout = -1 }, KeyCheckTimeout},
		{"nan timeout", func(s *Settings) { s.CheckTimeout = math.NaN() }, KeyCheckTimeout},
		{"inf timeout", func(s *Settings) { s.CheckTimeout = math.Inf(1) }, KeyCheckTimeout},
		{"blank selector", func(s *Settings) { s.ActiveScopes = []string{"source.css", " "} }, KeyActiveScopes},
		{"bad color", func(s *Settings) { s.HighlightColor = "grey" }, KeyHighlightColor},
		{"truncated color", func(s *Settings) { s.HighlightColor = "#7f84" }, KeyHighlightColor},
		{"ok", func(s *Settings) { s.CheckTimeout = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.key == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Key != tt.key {
				t.Errorf("Key = %q, want %q", verr.Key, tt.key)
			}
		})
	}
}

func TestSettings_Detect(t *testing.T) {
	s := Settings{
		ActiveScopes:   []string{"source.css"},
		CheckTimeout:   0.5,
		HighlightColor: DefaultHighlightColor,
	}

	d := s.Detect()
	if d.CheckTimeout != 500*time.Millisecond {
		t.Errorf("CheckTimeout = %v, want 500ms", d.CheckTimeout)
	}
	if diff := cmp.Diff([]string{"source.css"}, d.ActiveScopes); diff != "" {
		t.Errorf("ActiveScopes mismatch (-want +got):\n%s", diff)
	}

	d.ActiveScopes[0] = "changed"
	if s.ActiveScopes[0] != "source.css" {
		t.Error("Detect shares the scope slice")
	}
}

func TestSettings_Equal(t *testing.T) {
	a := Default()
	b := Default()
	b.HighlightColor = "#7F848E"
	if !a.Equal(b) {
		t.Error("colour comparison should ignore case")
	}

	b.ActiveScopes = []string{"source.css"}
	if a.Equal(b) {
		t.Error("different scopes compare equal")
	}
}

func TestSettings_Color(t *testing.T) {
	s := Default()
	c, err := s.Color()
	if err != nil {
		t.Fatalf("Color: %v", err)
	}
	if got := c.Hex(); got != DefaultHighlightColor {
		t.Errorf("Hex = %q, want %q", got, DefaultHighlightColor)
	}
}
