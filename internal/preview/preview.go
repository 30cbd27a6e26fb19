// Package preview turns hover requests into renderable previews.
//
// Hosts that render HTML use the fragment from HTML directly. Hosts that
// cannot, such as the terminal, show the summary from Probe instead.
package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"strings"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/encode"
)

// HTML returns the popup fragment embedding uri as an image source.
// Matched URIs never contain a double quote, so uri is embedded verbatim.
func HTML(uri string) string {
	return fmt.Sprintf(`<img src="%s" />`, uri)
}

// Info summarises an image data URI.
type Info struct {
	MediaType string
	// Format is the decoder name ("png", "gif", ...) or the media subtype
	// when no decoder understands the payload.
	Format string
	Width  int
	Height int
	// Size is the decoded payload size in bytes.
	Size int
}

// HasDimensions returns true if the image size is known.
func (i Info) HasDimensions() bool {
	return i.Width > 0 && i.Height > 0
}

// String formats the info for a one-line display.
func (i Info) String() string {
	if i.HasDimensions() {
		return fmt.Sprintf("%s %dx%d, %s", i.MediaType, i.Width, i.Height, formatSize(i.Size))
	}
	return fmt.Sprintf("%s, %s", i.MediaType, formatSize(i.Size))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// Probe decodes uri and reads its image header. Payloads no registered
// decoder understands (SVG, for one) still yield type and size.
func Probe(uri string) (Info, error) {
	mediaType, data, err := encode.Decode(uri)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		MediaType: mediaType,
		Format:    subtype(mediaType),
		Size:      len(data),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		info.Format = format
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}

func subtype(mediaType string) string {
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return mediaType
	}
	if i := strings.IndexByte(sub, '+'); i >= 0 {
		sub = sub[:i]
	}
	return sub
}

// Preview is everything a host needs to show a hover preview.
type Preview struct {
	Request hover.Request
	HTML    string
	Info    Info
	// Err is set when the payload could not be decoded; the HTML is
	// still usable by hosts that render it.
	Err error
}

// Build assembles a Preview for req.
func Build(req hover.Request) Preview {
	p := Preview{
		Request: req,
		HTML:    HTML(req.URI),
	}
	p.Info, p.Err = Probe(req.URI)
	return p
}

// Lines returns the preview as short text lines for non-HTML hosts.
func (p Preview) Lines() []string {
	if p.Err != nil {
		return []string{"data URI preview", "error: " + p.Err.Error()}
	}
	return []string{"data URI preview", p.Info.String()}
}
