package script

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/urilens/internal/logging"
)

func newTestState(t *testing.T, opts ...Option) (*State, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out), WithLogger(logging.Null())}, opts...)
	s := NewState(opts...)
	t.Cleanup(s.Close)
	return s, &out
}

func pngURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestModule_Match(t *testing.T) {
	s, out := newTestState(t)

	code := `
local urilens = require("urilens")
local text = 'a { src: url("data:image/png;base64,AAAA"); } b "data:text/plain,hi"'
local found = urilens.match(text)
print(#found)
for _, m in ipairs(found) do
	print(text:sub(m.start, m.stop) == m.uri, m.media_type, m.image)
end
`
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	want := "2\ntrue\timage/png\ttrue\ntrue\ttext/plain\tfalse\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestModule_EncodeDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.css")
	if err := os.WriteFile(path, []byte("a{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, out := newTestState(t)
	code := `
local path = "` + filepath.ToSlash(path) + `"
uri = urilens.encode(path)
media, data = urilens.decode(uri)
missing, err = urilens.encode(path .. ".gone")
bad, bad_err = urilens.decode("not a uri")
print(missing == nil, bad == nil)
`
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	if got := s.Global("uri"); got != "data:text/css,a%7B%7D" {
		t.Errorf("uri = %v", got)
	}
	if got := s.Global("media"); got != "text/css" {
		t.Errorf("media = %v", got)
	}
	if got := s.Global("data"); got != "a{}" {
		t.Errorf("data = %v", got)
	}
	if msg, _ := s.Global("err").(string); msg == "" {
		t.Error("encode of a missing file returned no error")
	}
	if msg, _ := s.Global("bad_err").(string); msg == "" {
		t.Error("decode of a non data URI returned no error")
	}
	if out.String() != "true\ttrue\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestModule_IsImageAndInfo(t *testing.T) {
	s, _ := newTestState(t)
	code := `
img = urilens.is_image("data:image/svg+xml,<svg/>")
txt = urilens.is_image("data:text/plain,x")
local i = urilens.info("` + pngURI(t, 3, 2) + `")
format, width, height = i.format, i.width, i.height
`
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	tests := map[string]any{
		"img":    true,
		"txt":    false,
		"format": "png",
		"width":  float64(3),
		"height": float64(2),
	}
	for name, want := range tests {
		if got := s.Global(name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestState_Sandbox(t *testing.T) {
	s, _ := newTestState(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if got := s.Global(name); got != nil {
			t.Errorf("%s = %v, want nil", name, got)
		}
	}
	if err := s.DoString(context.Background(), `require("os")`); err == nil {
		t.Error("require of an unknown module succeeded")
	}
}

func TestState_Timeout(t *testing.T) {
	s, _ := newTestState(t, WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := s.DoString(context.Background(), `while true do end`)
	if err == nil {
		t.Fatal("runaway script was not stopped")
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}

	// The state stays usable.
	if err := s.DoString(context.Background(), `x = 1`); err != nil {
		t.Errorf("DoString after timeout: %v", err)
	}
}

func TestState_DoFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lua")
	bad := filepath.Join(dir, "bad.lua")
	if err := os.WriteFile(good, []byte(`print(urilens.is_image("data:image/gif;base64,R0lG"))`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`error("boom")`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, out := newTestState(t)
	if err := s.DoFile(context.Background(), good); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	if out.String() != "true\n" {
		t.Errorf("output = %q", out.String())
	}

	err := s.DoFile(context.Background(), bad)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("DoFile(bad) = %v, want boom", err)
	}
	if err := s.DoFile(context.Background(), filepath.Join(dir, "missing.lua")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DoFile(missing) = %v, want ErrNotExist", err)
	}

	s.Close()
	if err := s.DoString(context.Background(), "x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v, want ErrStateClosed", err)
	}
}

func TestState_SetArgs(t *testing.T) {
	s, out := newTestState(t)
	s.SetArgs([]string{"one", "two"})
	if err := s.DoString(context.Background(), `print(#arg, arg[1], arg[2])`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if out.String() != "2\tone\ttwo\n" {
		t.Errorf("output = %q", out.String())
	}
}
