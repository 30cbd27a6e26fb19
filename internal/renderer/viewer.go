package renderer

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/urilens/internal/config"
	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/detect/match"
	"github.com/dshills/urilens/internal/event"
	"github.com/dshills/urilens/internal/logging"
)

// Document is the buffer shown by a Viewer.
type Document interface {
	ID() string
	Text() string
}

// Host receives the user's actions.
type Host interface {
	Hover(bufferID string, offset int, zone hover.Zone) error
	CreateDataURI() error
	CreateDataURIEnabled() bool
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

// WithHighlightColor sets the region colour.
func WithHighlightColor(c colorful.Color) Option {
	return func(v *Viewer) { v.styles = NewStyles(c) }
}

// redraw is posted to wake the event loop after state changes made on
// other goroutines.
type redraw struct{}

// Viewer is a terminal host for one document. It draws the text, marks
// data URI regions, turns pointer motion into hovers and shows the
// preview popup. It implements detect.Highlighter, detect.Previewer and
// app.StatusReporter.
type Viewer struct {
	mu sync.Mutex

	screen tcell.Screen
	host   Host
	doc    Document
	name   string
	log    *logging.Logger
	styles Styles

	regions map[string][]match.Region
	popup   *popup
	status  string
	top     int
}

// New creates a viewer drawing on screen. The screen must already be
// initialized.
func New(screen tcell.Screen, opts ...Option) *Viewer {
	def, _ := colorful.Hex(config.DefaultHighlightColor)
	v := &Viewer{
		screen:  screen,
		styles:  NewStyles(def),
		regions: make(map[string][]match.Region),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = logging.OrDefault(v.log).WithComponent("renderer")
	screen.EnableMouse(tcell.MouseMotionEvents)
	return v
}

// Attach sets the host and the document to show.
func (v *Viewer) Attach(host Host, doc Document, name string) {
	v.mu.Lock()
	v.host = host
	v.doc = doc
	v.name = name
	v.top = 0
	v.popup = nil
	v.mu.Unlock()
	v.requestRedraw()
}

// SetRegions implements detect.Highlighter.
func (v *Viewer) SetRegions(bufferID string, regions []match.Region) {
	v.mu.Lock()
	v.regions[bufferID] = slices.Clone(regions)
	v.mu.Unlock()
	v.requestRedraw()
}

// ClearRegions implements detect.Highlighter.
func (v *Viewer) ClearRegions(bufferID string) {
	v.mu.Lock()
	delete(v.regions, bufferID)
	if v.popup != nil && v.popup.req.BufferID == bufferID {
		v.popup = nil
	}
	v.mu.Unlock()
	v.requestRedraw()
}

// ShowPreview implements detect.Previewer. The popup is anchored at the
// cell of the request's point.
func (v *Viewer) ShowPreview(req hover.Request) {
	v.mu.Lock()
	if v.doc == nil || v.doc.ID() != req.BufferID {
		v.mu.Unlock()
		return
	}
	x, y, ok := v.cellOfLocked(req.Point)
	if !ok {
		v.mu.Unlock()
		return
	}
	w, h := v.screen.Size()
	v.popup = newPopup(req, x, y, w, h-1)
	v.mu.Unlock()

	v.log.Debug("preview at %d for %s", req.Point, req.Region)
	v.requestRedraw()
}

// HidePreview removes the popup.
func (v *Viewer) HidePreview() {
	v.mu.Lock()
	v.popup = nil
	v.mu.Unlock()
	v.requestRedraw()
}

// PreviewVisible reports whether a popup is shown.
func (v *Viewer) PreviewVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.popup != nil
}

// SetStatus implements app.StatusReporter.
func (v *Viewer) SetStatus(msg string) {
	v.mu.Lock()
	v.status = msg
	v.mu.Unlock()
	v.requestRedraw()
}

// Status returns the status message.
func (v *Viewer) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// SetHighlightColor restyles the view.
func (v *Viewer) SetHighlightColor(c colorful.Color) {
	v.mu.Lock()
	v.styles = NewStyles(c)
	v.mu.Unlock()
	v.requestRedraw()
}

// Subscribe follows highlight colour changes announced on bus.
func (v *Viewer) Subscribe(bus *event.Bus) (*event.Subscription, error) {
	return bus.Subscribe(event.TopicConfigChanged, func(_ context.Context, ev event.Event) error {
		s, ok := ev.Payload.(config.Settings)
		if !ok {
			return fmt.Errorf("config.changed: unexpected payload %T", ev.Payload)
		}
		c, err := s.Color()
		if err != nil {
			return err
		}
		v.SetHighlightColor(c)
		return nil
	}, event.WithPriority(event.PriorityLow))
}

func (v *Viewer) requestRedraw() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(redraw{}))
}

// textRows is the number of rows available for text.
func (v *Viewer) textRows() int {
	_, h := v.screen.Size()
	return max(h-1, 0)
}

// cellOfLocked maps a byte offset to its screen cell.
func (v *Viewer) cellOfLocked(off int) (x, y int, ok bool) {
	text := v.doc.Text()
	lines := splitLines(text)
	i := lineOf(lines, off)
	row := i - v.top
	if row < 0 || row >= v.textRows() {
		return 0, 0, false
	}
	return gutterWidth(len(lines)) + columnOf(text, lines[i], off), row, true
}

// hitTest maps a screen cell to a buffer offset and zone.
func (v *Viewer) hitTestLocked(x, y int) (int, hover.Zone, bool) {
	if v.doc == nil || y < 0 || y >= v.textRows() {
		return 0, hover.ZoneMargin, false
	}
	text := v.doc.Text()
	lines := splitLines(text)
	i := v.top + y
	if i >= len(lines) {
		return len(text), hover.ZoneMargin, true
	}
	gw := gutterWidth(len(lines))
	if x < gw {
		return lines[i].start, hover.ZoneGutter, true
	}
	return offsetAt(text, lines[i], x-gw), hover.ZoneText, true
}

// Draw renders the current state.
func (v *Viewer) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	w, h := s.Size()

	if v.doc != nil {
		v.drawTextLocked(w)
	}

	status := v.name
	if v.status != "" {
		status += " | " + v.status
	}
	for x := 0; x < w; x++ {
		s.SetContent(x, h-1, ' ', nil, v.styles.Status)
	}
	drawString(s, 0, h-1, w, status, v.styles.Status)

	if v.popup != nil {
		v.popup.draw(s, v.styles)
	}
	s.Show()
}

func (v *Viewer) drawTextLocked(width int) {
	text := v.doc.Text()
	lines := splitLines(text)
	regions := v.regions[v.doc.ID()]
	gw := gutterWidth(len(lines))

	for row := 0; row < v.textRows(); row++ {
		i := v.top + row
		if i >= len(lines) {
			break
		}
		num := strconv.Itoa(i + 1)
		drawString(v.screen, gw-1-len(num), row, len(num), num, v.styles.Gutter)

		walk(text, lines[i], func(off, col, cw int, cluster string) bool {
			x := gw + col
			if x+cw > width {
				return false
			}
			style := v.styles.Text
			if inRegions(regions, off) {
				style = v.styles.Region
			}
			if cluster == "\t" {
				for k := 0; k < cw; k++ {
					v.screen.SetContent(x+k, row, ' ', nil, style)
				}
				return true
			}
			runes := []rune(cluster)
			v.screen.SetContent(x, row, runes[0], runes[1:], style)
			return true
		})
	}
}

func inRegions(regions []match.Region, off int) bool {
	for _, r := range regions {
		if r.Contains(off) {
			return true
		}
	}
	return false
}

// Scroll moves the first visible line by delta lines.
func (v *Viewer) Scroll(delta int) {
	v.mu.Lock()
	if v.doc != nil {
		n := len(splitLines(v.doc.Text()))
		v.top = min(max(v.top+delta, 0), max(n-1, 0))
		v.popup = nil
	}
	v.mu.Unlock()
}

// HandleEvent processes one terminal event and reports whether the
// viewer should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(e)
	case *tcell.EventMouse:
		x, y := e.Position()
		v.handleMotion(x, y)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *Viewer) handleKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape:
		if v.PreviewVisible() {
			v.HidePreview()
			return false
		}
		return true
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.Scroll(-1)
	case tcell.KeyDown:
		v.Scroll(1)
	case tcell.KeyPgUp:
		v.Scroll(-v.textRows())
	case tcell.KeyPgDn:
		v.Scroll(v.textRows())
	case tcell.KeyRune:
		switch e.Rune() {
		case 'q':
			return true
		case 'c':
			v.createDataURI()
		}
	}
	return false
}

func (v *Viewer) createDataURI() {
	v.mu.Lock()
	host := v.host
	v.mu.Unlock()

	if host == nil || !host.CreateDataURIEnabled() {
		return
	}
	if err := host.CreateDataURI(); err != nil {
		v.log.Debug("create data URI: %v", err)
	}
}

// handleMotion dismisses a popup the pointer moved away from and
// reports the hover to the host.
func (v *Viewer) handleMotion(x, y int) {
	v.mu.Lock()
	off, zone, ok := v.hitTestLocked(x, y)
	if v.popup != nil {
		inRegion := ok && zone == hover.ZoneText && v.popup.req.Region.Contains(off)
		switch {
		case inRegion:
			v.mu.Unlock()
			return
		case v.popup.near(x, y) || v.popup.contains(x, y):
			v.mu.Unlock()
			return
		default:
			v.popup = nil
		}
	}
	host, doc := v.host, v.doc
	v.mu.Unlock()

	if !ok || host == nil || doc == nil {
		return
	}
	if err := host.Hover(doc.ID(), off, zone); err != nil {
		v.log.Debug("hover: %v", err)
	}
}

// Run draws and processes events until the user quits or ctx ends.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(ctx))
	})
	defer stop()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if in, ok := ev.(*tcell.EventInterrupt); ok {
			if _, done := in.Data().(context.Context); done {
				return ctx.Err()
			}
		} else if v.HandleEvent(ev) {
			return nil
		}
		v.Draw()
	}
}
