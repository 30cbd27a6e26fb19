package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"no args", nil, 2, "", "Usage: urilens"},
		{"help", []string{"help"}, 0, "Commands:", ""},
		{"unknown", []string{"frobnicate"}, 2, "", `unknown command "frobnicate"`},
		{"version", []string{"version"}, 0, "urilens dev", ""},
		{"version flag", []string{"--version"}, 0, "Commit: unknown", ""},
		{"scan without files", []string{"scan"}, 2, "", "Usage: urilens scan"},
		{"bad log level", []string{"scan", "-log-level", "loud", "x"}, 1, "", "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runArgs(t, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, errOut)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout = %q, want it to contain %q", out, tt.wantOut)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestScan(t *testing.T) {
	uri := "data:image/png;base64,iVBORw0KGgo="
	css := writeFile(t, "a.css", `a { background: url("`+uri+`"); }`+"\n"+`b "data:text/plain,hi"`)

	code, out, errOut := runArgs(t, "scan", "-log-level", "error", css)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	start := len(`a { background: url("`)
	want := []string{
		strconv.Itoa(start) + "-" + strconv.Itoa(start+len(uri)) + " " + uri,
		"data:text/plain,hi",
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), out)
	}
	if lines[0] != want[0] {
		t.Errorf("line 0 = %q, want %q", lines[0], want[0])
	}
	if !strings.HasSuffix(lines[1], want[1]) {
		t.Errorf("line 1 = %q", lines[1])
	}

	code, out, _ = runArgs(t, "scan", "-log-level", "error", "-images", css)
	if code != 0 || strings.Count(out, "\n") != 1 {
		t.Errorf("-images: code %d, out %q", code, out)
	}

	code, out, _ = runArgs(t, "scan", "-log-level", "error", "-dump", css)
	if code != 0 || !strings.Contains(out, "MediaType") || !strings.Contains(out, "image/png") {
		t.Errorf("-dump: code %d, out %q", code, out)
	}

	code, _, errOut = runArgs(t, "scan", "-log-level", "error", css+".missing")
	if code != 1 || errOut == "" {
		t.Errorf("missing file: code %d, stderr %q", code, errOut)
	}
}

func TestEncode_Stdout(t *testing.T) {
	css := writeFile(t, "a.css", "a{}")
	settings := filepath.Join(t.TempDir(), "none.toml")

	code, out, errOut := runArgs(t, "encode", "-log-level", "error", "-c", settings, css)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if out != "data:text/css,a%7B%7D\n" {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(errOut, "copied") {
		t.Errorf("stderr = %q, no copy happened", errOut)
	}

	code, _, errOut = runArgs(t, "encode", "-log-level", "error", "-c", settings, css+".missing")
	if code != 1 || !strings.Contains(errOut, "Unable to access file: ") {
		t.Errorf("missing file: code %d, stderr %q", code, errOut)
	}
}

func TestScript(t *testing.T) {
	lua := writeFile(t, "s.lua", `print(arg[1], urilens.is_image(arg[1]))`)

	code, out, errOut := runArgs(t, "script", "-log-level", "error", lua, "data:image/gif;base64,R0lG")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if out != "data:image/gif;base64,R0lG\ttrue\n" {
		t.Errorf("stdout = %q", out)
	}

	bad := writeFile(t, "bad.lua", `error("boom")`)
	if code, _, errOut := runArgs(t, "script", "-log-level", "error", bad); code != 1 || !strings.Contains(errOut, "boom") {
		t.Errorf("failing script: code %d, stderr %q", code, errOut)
	}
}

