package match

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFind_NoScheme(t *testing.T) {
	tests := []string{
		"",
		"plain text with no uris",
		"DATA:image/png;base64,AAAA",
		"Data:text/plain,hello",
		"metadata: image/png",
	}

	for _, text := range tests {
		if got := Find(text); len(got) != 0 {
			t.Errorf("Find(%q) = %v, want empty", text, got)
		}
	}
}

func TestFind_EmbeddedImage(t *testing.T) {
	uri := "data:image/png;base64,iVBORw0KGgo="
	text := "before " + uri + " after"

	got := Find(text)
	want := []Region{{Start: 7, End: 7 + len(uri)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Find mismatch (-want +got):\n%s", diff)
	}
	if s := got[0].Text(text); s != uri {
		t.Errorf("region text = %q, want %q", s, uri)
	}
}

func TestFind_TwoURIs(t *testing.T) {
	first := "data:image/png;base64,AAAA"
	second := "data:image/gif;base64,R0lGOD"
	text := first + " \n\t" + second

	got := Find(text)
	if len(got) != 2 {
		t.Fatalf("Find returned %d regions, want 2: %v", len(got), got)
	}
	if got[0].Text(text) != first {
		t.Errorf("first = %q, want %q", got[0].Text(text), first)
	}
	if got[1].Text(text) != second {
		t.Errorf("second = %q, want %q", got[1].Text(text), second)
	}
	if !Ordered(got) {
		t.Errorf("regions not ordered: %v", got)
	}
}

func TestFind_PlainURIsDoNotMerge(t *testing.T) {
	text := "data:text/plain,hello data:text/plain,world\n"

	got := Find(text)
	if len(got) != 2 {
		t.Fatalf("Find returned %d regions, want 2: %v", len(got), got)
	}
	if got[0].Text(text) != "data:text/plain,hello" {
		t.Errorf("first = %q", got[0].Text(text))
	}
	if got[1].Text(text) != "data:text/plain,world" {
		t.Errorf("second = %q", got[1].Text(text))
	}
}

func TestFind_Terminators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"double quote", `data:text/plain,hello"`, "data:text/plain,hello"},
		{"html attribute", `<img src="data:image/png;base64,AAA=">`, "data:image/png;base64,AAA="},
		{"end of text", "data:text/plain,hello", "data:text/plain,hello"},
		{"newline", "data:text/plain,hello\nmore", "data:text/plain,hello"},
		{"tab", "data:text/plain,a\tb", "data:text/plain,a"},
		{"no media type", "x data:,payload y", "data:,payload"},
		{"extra params", "data:text/plain;charset=utf-8;base64,SGk= ", "data:text/plain;charset=utf-8;base64,SGk="},
		{"comma in payload", "data:text/csv,a,b,c ", "data:text/csv,a,b,c"},
		{"single quote kept", "data:text/plain,it's ", "data:text/plain,it's"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Find(tt.text)
			if len(got) != 1 {
				t.Fatalf("Find(%q) returned %d regions, want 1", tt.text, len(got))
			}
			if s := got[0].Text(tt.text); s != tt.want {
				t.Errorf("region text = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestFind_Misses(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing comma", "data:image/png;base64 "},
		{"empty payload at end", "data:text/plain,"},
		{"scheme only", "data:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.text); len(got) != 0 {
				t.Errorf("Find(%q) = %v, want empty", tt.text, got)
			}
		})
	}
}

func TestFind_ByteOffsetsWithMultibyteText(t *testing.T) {
	prefix := "héllo wörld "
	uri := "data:image/svg+xml,%3Csvg%3E"
	text := prefix + uri

	got := Find(text)
	if len(got) != 1 {
		t.Fatalf("Find returned %d regions, want 1", len(got))
	}
	if got[0].Start != len(prefix) {
		t.Errorf("Start = %d, want %d", got[0].Start, len(prefix))
	}
	if got[0].Text(text) != uri {
		t.Errorf("text = %q, want %q", got[0].Text(text), uri)
	}
}

func TestFind_ManyURIsOrdered(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("url(data:image/png;base64,AAAA) ")
	}
	text := sb.String()

	got := Find(text)
	if len(got) != 50 {
		t.Fatalf("Find returned %d regions, want 50", len(got))
	}
	if !Ordered(got) {
		t.Error("regions are not ordered and disjoint")
	}
	// The closing paren is not a terminator.
	if s := got[0].Text(text); s != "data:image/png;base64,AAAA)" {
		t.Errorf("first region = %q", s)
	}
}

func TestFindMatches_Parts(t *testing.T) {
	text := `src="data:image/png;charset=x;base64,iVBOR"`

	got := FindMatches(text)
	if len(got) != 1 {
		t.Fatalf("FindMatches returned %d, want 1", len(got))
	}
	m := got[0]
	if m.MediaType != "image/png" {
		t.Errorf("MediaType = %q", m.MediaType)
	}
	if m.Params != ";charset=x;base64" {
		t.Errorf("Params = %q", m.Params)
	}
	if m.Payload != "iVBOR" {
		t.Errorf("Payload = %q", m.Payload)
	}
	if !m.IsImage() {
		t.Error("IsImage() = false, want true")
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"data:image/png;base64,AA", true},
		{"data:image/svg+xml,%3C", true},
		{"data:text/plain,hi", false},
		{"data:,hi", false},
		{"DATA:image/png,AA", false},
	}

	for _, tt := range tests {
		if got := IsImage(tt.uri); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.uri, got, tt.want)
		}
	}
}
