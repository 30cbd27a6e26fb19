package detect

import (
	"time"

	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/detect/match"
)

// Buffer is the host document under observation. The detector never owns
// it; it only reads the text and syntax.
type Buffer interface {
	ID() string
	// Syntax returns the syntax identifier used for the applicability check.
	Syntax() string
	// Text returns a consistent snapshot of the current content.
	Text() string
	// Substr returns the current text in [start, end).
	Substr(start, end int) string
}

// Highlighter visually marks the regions of a buffer. Each call replaces
// the previous marks of that buffer wholesale.
type Highlighter interface {
	SetRegions(bufferID string, regions []match.Region)
	ClearRegions(bufferID string)
}

// Previewer renders a preview near the request's anchor point.
type Previewer interface {
	ShowPreview(req hover.Request)
}

// Settings is the configuration the detector runs with.
type Settings struct {
	// ActiveScopes are the selectors naming observed syntaxes.
	// Empty means no buffer is observed.
	ActiveScopes []string

	// CheckTimeout is the quiescence delay before a scan.
	CheckTimeout time.Duration
}

// DefaultCheckTimeout is the delay used when none is configured.
const DefaultCheckTimeout = 2 * time.Second

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		ActiveScopes: []string{},
		CheckTimeout: DefaultCheckTimeout,
	}
}

type nopHighlighter struct{}

func (nopHighlighter) SetRegions(string, []match.Region) {}
func (nopHighlighter) ClearRegions(string)               {}

type nopPreviewer struct{}

func (nopPreviewer) ShowPreview(hover.Request) {}
