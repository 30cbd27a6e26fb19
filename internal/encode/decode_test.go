package encode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		uri  string
		want URI
	}{
		{"data:image/png;base64,AAAA", URI{MediaType: "image/png", Base64: true, Data: "AAAA"}},
		{"data:text/plain;charset=utf-8,hi", URI{MediaType: "text/plain", Params: []string{"charset=utf-8"}, Data: "hi"}},
		{"data:,x", URI{Data: "x"}},
		{"data:text/csv,a,b", URI{MediaType: "text/csv", Data: "a,b"}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.uri)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.uri, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.uri, diff)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse("http://example.com"); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("err = %v, want ErrNotDataURI", err)
	}
	if _, err := Parse("data:image/png;base64"); !errors.Is(err, ErrMissingComma) {
		t.Errorf("err = %v, want ErrMissingComma", err)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("plain text"),
		{0x00, 0xff, 0x10, 0x80},
		[]byte("ünïcödé 100% \"quoted\"\n"),
	}

	for _, data := range payloads {
		for _, mediaType := range []string{"text/plain", "application/octet-stream"} {
			uri := EncodeBytes(mediaType, data)
			gotType, got, err := Decode(uri)
			if err != nil {
				t.Fatalf("Decode(%q): %v", uri, err)
			}
			if gotType != mediaType {
				t.Errorf("type = %q, want %q", gotType, mediaType)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Decode(%q) = %q, want %q", uri, got, data)
			}
		}
	}
}

func TestDecode_Lenient(t *testing.T) {
	_, got, err := Decode("data:image/png;base64,AAE")
	if err != nil {
		t.Fatalf("unpadded base64: %v", err)
	}
	if !bytes.Equal(got, []byte{0x00, 0x01}) {
		t.Errorf("got %v", got)
	}

	mediaType, got, err := Decode("data:,a+b")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mediaType != "text/plain" || string(got) != "a+b" {
		t.Errorf("got %q %q", mediaType, got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	var decErr *DecodeError

	_, _, err := Decode("data:image/png;base64,!!!")
	if !errors.As(err, &decErr) || !decErr.Base64 {
		t.Errorf("bad base64 err = %v", err)
	}

	_, _, err = Decode("data:text/plain,%zz")
	if !errors.As(err, &decErr) || decErr.Base64 {
		t.Errorf("bad percent err = %v", err)
	}
}
