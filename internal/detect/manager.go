package detect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/urilens/internal/detect/debounce"
	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/detect/match"
	"github.com/dshills/urilens/internal/detect/store"
	"github.com/dshills/urilens/internal/logging"
	"github.com/dshills/urilens/internal/scope"
)

// Option configures a Manager.
type Option func(*Manager)

// WithHighlighter sets the region highlight sink.
func WithHighlighter(h Highlighter) Option {
	return func(m *Manager) {
		if h != nil {
			m.highlighter = h
		}
	}
}

// WithPreviewer sets the preview renderer.
func WithPreviewer(p Previewer) Option {
	return func(m *Manager) {
		if p != nil {
			m.previewer = p
		}
	}
}

// WithClock sets the clock observers schedule scans on.
func WithClock(c debounce.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStore sets the region store. Useful when several components read it.
func WithStore(s *store.Store) Option {
	return func(m *Manager) {
		if s != nil {
			m.store = s
		}
	}
}

// Manager routes host notifications to per-buffer observers.
// It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	settings  Settings
	lookup    scope.Lookup
	checker   *scope.Checker
	buffers   map[string]Buffer
	observers map[string]*Observer
	closed    bool

	store       *store.Store
	resolver    *hover.Resolver
	highlighter Highlighter
	previewer   Previewer
	clock       debounce.Clock
	log         *logging.Logger
}

// NewManager creates a manager. lookup resolves buffer syntaxes for the
// applicability check against settings.ActiveScopes.
func NewManager(lookup scope.Lookup, settings Settings, opts ...Option) *Manager {
	m := &Manager{
		settings:    normalize(settings),
		lookup:      lookup,
		buffers:     make(map[string]Buffer),
		observers:   make(map[string]*Observer),
		store:       store.New(),
		highlighter: nopHighlighter{},
		previewer:   nopPreviewer{},
		clock:       debounce.RealClock(),
		log:         logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("detect")
	m.checker = scope.NewChecker(lookup, m.settings.ActiveScopes)
	m.resolver = hover.NewResolver(m.store, hover.WithPanicHandler(func(r any) {
		m.log.Error("hover failed: %v", r)
	}))
	return m
}

func normalize(s Settings) Settings {
	if s.CheckTimeout < 0 {
		s.CheckTimeout = 0
	}
	scopes := make([]string, len(s.ActiveScopes))
	copy(scopes, s.ActiveScopes)
	s.ActiveScopes = scopes
	return s
}

// Settings returns the settings currently in effect.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return normalize(m.settings)
}

// Store returns the region store the manager publishes to.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Open registers a loaded buffer. If its syntax is applicable an observer
// is attached and a first scan is scheduled. Returns whether the buffer is
// observed.
func (m *Manager) Open(buf Buffer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrManagerClosed
	}
	id := buf.ID()
	if _, exists := m.buffers[id]; exists {
		return false, fmt.Errorf("open %s: %w", id, ErrBufferAlreadyOpen)
	}
	m.buffers[id] = buf

	return m.attachLocked(buf), nil
}

// attachLocked creates an observer for buf if applicable and notifies it.
func (m *Manager) attachLocked(buf Buffer) bool {
	if !m.checker.Applicable(buf.Syntax()) {
		m.log.Debug("buffer %s with syntax %q not observed", buf.ID(), buf.Syntax())
		return false
	}
	if _, ok := m.observers[buf.ID()]; ok {
		return true
	}

	obs := newObserver(buf, m.store, m.highlighter, m.settings.CheckTimeout, m.clock, m.log)
	m.observers[buf.ID()] = obs
	obs.Notify()
	m.log.Debug("observing buffer %s", buf.ID())
	return true
}

// detachLocked disposes the observer of bufferID, if any.
func (m *Manager) detachLocked(bufferID string) {
	if obs, ok := m.observers[bufferID]; ok {
		delete(m.observers, bufferID)
		obs.Dispose()
	}
}

// Modified records an edit of the buffer. Edits of unobserved buffers are
// ignored.
func (m *Manager) Modified(bufferID string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.buffers[bufferID]; !ok {
		return fmt.Errorf("modified %s: %w", bufferID, ErrUnknownBuffer)
	}
	if obs, ok := m.observers[bufferID]; ok {
		obs.Notify()
	}
	return nil
}

// Reloaded records that the buffer content was reloaded from disk.
func (m *Manager) Reloaded(bufferID string) error {
	return m.Modified(bufferID)
}

// SyntaxChanged re-runs the applicability check for a buffer whose syntax
// changed, attaching or detaching its observer.
func (m *Manager) SyntaxChanged(bufferID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf, ok := m.buffers[bufferID]
	if !ok {
		return fmt.Errorf("syntax changed %s: %w", bufferID, ErrUnknownBuffer)
	}
	if !m.checker.Applicable(buf.Syntax()) {
		m.detachLocked(bufferID)
		return nil
	}
	m.attachLocked(buf)
	return nil
}

// Close forgets the buffer and disposes its observer.
func (m *Manager) Close(bufferID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buffers[bufferID]; !ok {
		return fmt.Errorf("close %s: %w", bufferID, ErrUnknownBuffer)
	}
	delete(m.buffers, bufferID)
	m.detachLocked(bufferID)
	return nil
}

// Hover resolves a pointer hover and, for image data URIs, hands the
// request to the previewer.
func (m *Manager) Hover(bufferID string, point int, zone hover.Zone) (hover.Request, bool) {
	m.mu.RLock()
	buf, ok := m.buffers[bufferID]
	_, observed := m.observers[bufferID]
	m.mu.RUnlock()

	if !ok || !observed {
		return hover.Request{}, false
	}

	req, ok := m.resolver.Resolve(buf, point, zone)
	if !ok {
		return hover.Request{}, false
	}
	if !m.showPreview(req) {
		return hover.Request{}, false
	}
	return req, true
}

func (m *Manager) showPreview(req hover.Request) (shown bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("preview failed: %v", r)
			shown = false
		}
	}()
	m.previewer.ShowPreview(req)
	return true
}

// Regions returns the published regions of a buffer.
func (m *Manager) Regions(bufferID string) []match.Region {
	return m.store.Get(bufferID)
}

// Observer returns the observer attached to a buffer.
func (m *Manager) Observer(bufferID string) (*Observer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obs, ok := m.observers[bufferID]
	return obs, ok
}

// Observing returns true if the buffer has an observer.
func (m *Manager) Observing(bufferID string) bool {
	_, ok := m.Observer(bufferID)
	return ok
}

// Buffers returns the identities of all open buffers, sorted.
func (m *Manager) Buffers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.buffers))
	for id := range m.buffers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reconfigure applies new settings. Observers pick up the new delay for
// later notifications; buffers that stop being applicable lose their
// observer and regions; buffers that become applicable gain one and are
// scanned as if freshly loaded.
func (m *Manager) Reconfigure(settings Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.settings = normalize(settings)
	m.checker = scope.NewChecker(m.lookup, m.settings.ActiveScopes)

	attached, detached := 0, 0
	for id, buf := range m.buffers {
		_, observed := m.observers[id]
		applicable := m.checker.Applicable(buf.Syntax())

		switch {
		case observed && !applicable:
			m.detachLocked(id)
			detached++
		case observed:
			m.observers[id].setDelay(m.settings.CheckTimeout)
		case applicable:
			m.attachLocked(buf)
			attached++
		}
	}

	m.log.Info("reconfigured: timeout=%s scopes=%v attached=%d detached=%d",
		m.settings.CheckTimeout, m.settings.ActiveScopes, attached, detached)
}

// Shutdown disposes every observer. The manager rejects later Opens.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for id := range m.observers {
		m.detachLocked(id)
	}
	m.buffers = make(map[string]Buffer)
}
