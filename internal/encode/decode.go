package encode

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// URI is a data URI split into its parts.
type URI struct {
	// MediaType is the type/subtype, "" if omitted.
	MediaType string
	// Params are the ';'-separated parameters other than base64.
	Params []string
	// Base64 reports a ";base64" marker before the comma.
	Base64 bool
	// Data is the raw payload after the comma.
	Data string
}

// Parse splits a data URI. Only the scheme and the comma are required.
func Parse(uri string) (URI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return URI{}, ErrNotDataURI
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return URI{}, ErrMissingComma
	}

	var u URI
	u.Data = data

	parts := strings.Split(header, ";")
	u.MediaType = parts[0]
	for _, p := range parts[1:] {
		if p == "base64" {
			u.Base64 = true
			continue
		}
		if p != "" {
			u.Params = append(u.Params, p)
		}
	}
	return u, nil
}

// EffectiveType returns the media type, defaulting to text/plain as data
// URIs without one do.
func (u URI) EffectiveType() string {
	if u.MediaType == "" {
		return DefaultMediaType
	}
	return u.MediaType
}

// Bytes decodes the payload.
func (u URI) Bytes() ([]byte, error) {
	if u.Base64 {
		data, err := base64.StdEncoding.DecodeString(u.Data)
		if err != nil {
			// Unpadded payloads are common in hand-written URIs.
			if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(u.Data, "=")); rawErr == nil {
				return raw, nil
			}
			return nil, &DecodeError{Base64: true, Err: err}
		}
		return data, nil
	}

	s, err := url.PathUnescape(u.Data)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return []byte(s), nil
}

// Decode parses uri and returns its media type and decoded payload.
func Decode(uri string) (string, []byte, error) {
	u, err := Parse(uri)
	if err != nil {
		return "", nil, err
	}
	data, err := u.Bytes()
	if err != nil {
		return "", nil, err
	}
	return u.EffectiveType(), data, nil
}
