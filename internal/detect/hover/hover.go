// Package hover maps pointer positions to previewable data URI regions.
package hover

import (
	"github.com/dshills/urilens/internal/detect/match"
)

// Zone classifies what the pointer is resting over.
type Zone int

const (
	// ZoneText is the text area of a buffer.
	ZoneText Zone = iota
	// ZoneGutter is the line number or annotation gutter.
	ZoneGutter
	// ZoneMargin is any other non-text area.
	ZoneMargin
)

// String returns the zone name.
func (z Zone) String() string {
	switch z {
	case ZoneText:
		return "text"
	case ZoneGutter:
		return "gutter"
	case ZoneMargin:
		return "margin"
	default:
		return "unknown"
	}
}

// Request asks the host to preview a data URI near an anchor point.
type Request struct {
	BufferID string
	URI      string
	Point    int
	Region   match.Region
}

// Regions supplies the published regions of a buffer.
type Regions interface {
	Get(bufferID string) []match.Region
}

// Buffer is the read access the resolver needs to a buffer.
type Buffer interface {
	ID() string
	// Substr returns the current text in [start, end).
	Substr(start, end int) string
}

// Resolver turns hover notifications into preview requests.
type Resolver struct {
	regions Regions
	onPanic func(recovered any)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPanicHandler sets a handler for panics raised while resolving.
func WithPanicHandler(h func(recovered any)) Option {
	return func(r *Resolver) {
		r.onPanic = h
	}
}

// NewResolver creates a resolver reading from regions.
func NewResolver(regions Regions, opts ...Option) *Resolver {
	r := &Resolver{regions: regions}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a preview request if point lies inside an image data URI
// region of buf. Hovers outside the text zone are ignored. Resolve never
// blocks on a scan; it reads whatever regions are currently published.
func (r *Resolver) Resolve(buf Buffer, point int, zone Zone) (req Request, ok bool) {
	if zone != ZoneText || buf == nil || r.regions == nil {
		return Request{}, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			if r.onPanic != nil {
				r.onPanic(rec)
			}
			req, ok = Request{}, false
		}
	}()

	id := buf.ID()
	region, found := Locate(r.regions.Get(id), point)
	if !found {
		return Request{}, false
	}

	uri := buf.Substr(region.Start, region.End)
	if !match.IsImage(uri) {
		return Request{}, false
	}

	return Request{
		BufferID: id,
		URI:      uri,
		Point:    point,
		Region:   region,
	}, true
}

// Locate returns the region containing point. Regions are disjoint, so the
// first hit is the only one.
func Locate(regions []match.Region, point int) (match.Region, bool) {
	for _, region := range regions {
		if region.Contains(point) {
			return region, true
		}
	}
	return match.Region{}, false
}
