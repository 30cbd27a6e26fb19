package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dshills/urilens/internal/buffer"
	"github.com/dshills/urilens/internal/config"
	"github.com/dshills/urilens/internal/detect"
	"github.com/dshills/urilens/internal/detect/debounce"
	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/encode"
	"github.com/dshills/urilens/internal/event"
	"github.com/dshills/urilens/internal/event/topic"
	"github.com/dshills/urilens/internal/logging"
	"github.com/dshills/urilens/internal/scope"
)

// Option configures an App.
type Option func(*App)

// WithConfig sets the settings source. Its current settings seed the
// detection manager and later changes reconfigure it.
func WithConfig(c *config.Config) Option {
	return func(a *App) { a.cfg = c }
}

// WithRegistry sets the syntax registry.
func WithRegistry(r *scope.Registry) Option {
	return func(a *App) { a.registry = r }
}

// WithHighlighter sets where regions are drawn.
func WithHighlighter(h detect.Highlighter) Option {
	return func(a *App) { a.highlighter = h }
}

// WithPreviewer sets where image previews are shown.
func WithPreviewer(p detect.Previewer) Option {
	return func(a *App) { a.previewer = p }
}

// WithClipboard sets the clipboard used by CreateDataURI.
func WithClipboard(c Clipboard) Option {
	return func(a *App) { a.clipboard = c }
}

// WithStatus sets the status reporter.
func WithStatus(s StatusReporter) Option {
	return func(a *App) { a.status = s }
}

// WithEncoder sets the file encoder.
func WithEncoder(e *encode.Encoder) Option {
	return func(a *App) { a.encoder = e }
}

// WithClock sets the clock driving the debounce timers.
func WithClock(c debounce.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) { a.log = l }
}

// App is the central coordinator.
type App struct {
	mu      sync.Mutex
	running bool

	cfg         *config.Config
	registry    *scope.Registry
	highlighter detect.Highlighter
	previewer   detect.Previewer
	clipboard   Clipboard
	status      StatusReporter
	encoder     *encode.Encoder
	clock       debounce.Clock
	log         *logging.Logger

	bus       *event.Bus
	docs      *DocumentManager
	manager   *detect.Manager
	subs      []*event.Subscription
	unwatch   func()
	lastHover hover.Request
}

// New creates an App. Call Start before publishing events.
func New(opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	a.log = logging.OrDefault(a.log)
	if a.cfg == nil {
		a.cfg = config.New(config.WithEnv(nil), config.WithLogger(a.log))
	}
	if a.registry == nil {
		a.registry = scope.DefaultRegistry()
	}
	if a.clipboard == nil {
		a.clipboard = SystemClipboard{}
	}
	if a.status == nil {
		a.status = &StatusLine{}
	}
	if a.encoder == nil {
		a.encoder = encode.NewEncoder()
	}

	managerOpts := []detect.Option{detect.WithLogger(a.log)}
	if a.highlighter != nil {
		managerOpts = append(managerOpts, detect.WithHighlighter(a.highlighter))
	}
	if a.previewer != nil {
		managerOpts = append(managerOpts, detect.WithPreviewer(a.previewer))
	}
	if a.clock != nil {
		managerOpts = append(managerOpts, detect.WithClock(a.clock))
	}

	a.log = a.log.WithComponent("app")
	a.bus = event.New(event.WithLogger(a.log))
	a.docs = NewDocumentManager(a.registry)
	a.manager = detect.NewManager(a.registry, a.cfg.Settings().Detect(), managerOpts...)
	return a
}

// Bus returns the event bus.
func (a *App) Bus() *event.Bus { return a.bus }

// Documents returns the document manager.
func (a *App) Documents() *DocumentManager { return a.docs }

// Manager returns the detection manager.
func (a *App) Manager() *detect.Manager { return a.manager }

// Config returns the settings source.
func (a *App) Config() *config.Config { return a.cfg }

// Status returns the status reporter.
func (a *App) Status() StatusReporter { return a.status }

// Start subscribes the detection manager to host events and to settings
// changes.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return ErrAlreadyRunning
	}

	handlers := []struct {
		topic   topic.Topic
		handler event.Handler
	}{
		{event.TopicBufferLoaded, a.onLoaded},
		{event.TopicBufferModified, a.onModified},
		{event.TopicBufferReloaded, a.onReloaded},
		{event.TopicBufferClosed, a.onClosed},
		{event.TopicBufferSyntax, a.onSyntax},
		{event.TopicPointerHover, a.onHover},
	}
	for _, h := range handlers {
		sub, err := a.bus.Subscribe(h.topic, h.handler, event.WithPriority(event.PriorityCritical))
		if err != nil {
			a.unsubscribeLocked()
			return err
		}
		a.subs = append(a.subs, sub)
	}

	a.unwatch = a.cfg.Subscribe(a.applySettings)
	a.running = true
	a.log.Info("started with scopes %v", a.manager.Settings().ActiveScopes)
	return nil
}

func (a *App) unsubscribeLocked() {
	for _, sub := range a.subs {
		_ = a.bus.Unsubscribe(sub)
	}
	a.subs = nil
	if a.unwatch != nil {
		a.unwatch()
		a.unwatch = nil
	}
}

// Shutdown stops observing all buffers and closes the bus. The config
// is left to its owner.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false
	a.unsubscribeLocked()
	a.manager.Shutdown()
	a.bus.Close()
	a.log.Info("shut down")
}

func (a *App) isRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// applySettings hands new settings to the manager and announces them.
func (a *App) applySettings(s config.Settings) {
	a.manager.Reconfigure(s.Detect())
	if err := a.bus.Publish(context.Background(), event.TopicConfigChanged, s); err != nil {
		a.log.Warn("config.changed: %v", err)
	}
}

func (a *App) publish(t event.Event) error {
	if !a.isRunning() {
		return ErrNotRunning
	}
	return a.bus.Publish(context.Background(), t.Topic, t.Payload)
}

// OpenFile opens path and announces it. Opening an already open file
// only activates it.
func (a *App) OpenFile(path string) (*Document, error) {
	doc, created, err := a.docs.Open(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	if !created {
		return doc, nil
	}
	if err := a.publish(event.Event{Topic: event.TopicBufferLoaded, Payload: event.BufferPayload{BufferID: doc.ID()}}); err != nil {
		return doc, err
	}
	return doc, nil
}

// OpenScratch opens an unsaved document and announces it.
func (a *App) OpenScratch(name, text string) (*Document, error) {
	doc := a.docs.OpenScratch(name, text)
	if err := a.publish(event.Event{Topic: event.TopicBufferLoaded, Payload: event.BufferPayload{BufferID: doc.ID()}}); err != nil {
		return doc, err
	}
	return doc, nil
}

// Edit applies fn to the document's buffer and announces the change.
func (a *App) Edit(id string, fn func(b *buffer.Buffer) error) error {
	doc, ok := a.docs.Get(id)
	if !ok {
		return NewOperationError("edit", id, ErrDocumentNotFound)
	}
	if err := fn(doc.Buffer); err != nil {
		return NewOperationError("edit", id, err)
	}
	return a.publish(event.Event{Topic: event.TopicBufferModified, Payload: event.BufferPayload{BufferID: id}})
}

// Reload re-reads a file backed document from disk and announces it.
func (a *App) Reload(id string) error {
	doc, ok := a.docs.Get(id)
	if !ok {
		return NewOperationError("reload", id, ErrDocumentNotFound)
	}
	if !doc.HasFile() {
		return NewOperationError("reload", id, ErrNoActiveFile)
	}
	content, err := os.ReadFile(doc.Path())
	if err != nil {
		return NewOperationError("reload", doc.Path(), err)
	}
	doc.SetText(string(content))
	return a.publish(event.Event{Topic: event.TopicBufferReloaded, Payload: event.BufferPayload{BufferID: id}})
}

// SetSyntax changes the document's syntax and announces it.
func (a *App) SetSyntax(id, syntaxPath string) error {
	doc, ok := a.docs.Get(id)
	if !ok {
		return NewOperationError("set syntax", id, ErrDocumentNotFound)
	}
	doc.SetSyntax(syntaxPath)
	return a.publish(event.Event{Topic: event.TopicBufferSyntax, Payload: event.SyntaxPayload{BufferID: id, Syntax: syntaxPath}})
}

// CloseDocument announces the close and forgets the document.
func (a *App) CloseDocument(id string) error {
	if _, ok := a.docs.Get(id); !ok {
		return NewOperationError("close", id, ErrDocumentNotFound)
	}
	err := a.publish(event.Event{Topic: event.TopicBufferClosed, Payload: event.BufferPayload{BufferID: id}})
	if cerr := a.docs.Close(id); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Hover announces a pointer hover over offset of a document.
func (a *App) Hover(id string, offset int, zone hover.Zone) error {
	return a.publish(event.Event{Topic: event.TopicPointerHover, Payload: event.HoverPayload{BufferID: id, Offset: offset, Zone: zone}})
}

// LastHover returns the most recent hover that produced a preview.
func (a *App) LastHover() (hover.Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastHover, a.lastHover.URI != ""
}

func (a *App) onLoaded(_ context.Context, ev event.Event) error {
	p := ev.Payload.(event.BufferPayload)
	doc, ok := a.docs.Get(p.BufferID)
	if !ok {
		return fmt.Errorf("loaded %s: %w", p.BufferID, ErrDocumentNotFound)
	}
	observed, err := a.manager.Open(doc)
	if err != nil {
		return err
	}
	a.log.Debug("opened %s (%s), observed=%v", doc.Name, doc.Syntax(), observed)
	return nil
}

func (a *App) onModified(_ context.Context, ev event.Event) error {
	return a.manager.Modified(ev.Payload.(event.BufferPayload).BufferID)
}

func (a *App) onReloaded(_ context.Context, ev event.Event) error {
	return a.manager.Reloaded(ev.Payload.(event.BufferPayload).BufferID)
}

func (a *App) onClosed(_ context.Context, ev event.Event) error {
	return a.manager.Close(ev.Payload.(event.BufferPayload).BufferID)
}

func (a *App) onSyntax(_ context.Context, ev event.Event) error {
	return a.manager.SyntaxChanged(ev.Payload.(event.SyntaxPayload).BufferID)
}

func (a *App) onHover(_ context.Context, ev event.Event) error {
	p := ev.Payload.(event.HoverPayload)
	req, ok := a.manager.Hover(p.BufferID, p.Offset, p.Zone)

	a.mu.Lock()
	if ok {
		a.lastHover = req
	} else {
		a.lastHover = hover.Request{}
	}
	a.mu.Unlock()
	return nil
}
