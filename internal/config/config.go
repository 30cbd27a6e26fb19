package config

import (
	"fmt"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/dshills/urilens/internal/logging"
	"github.com/dshills/urilens/internal/watcher"
)

// Option configures a Config.
type Option func(*Config)

// WithPath sets the settings file path. Without one only defaults,
// environment and overrides apply.
func WithPath(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem sets the file system used to read the settings file.
func WithFileSystem(fsys FileSystem) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithEnv sets the environment lookup. Pass nil to ignore the
// environment entirely.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(c *Config) {
		c.env = lookup
	}
}

// WithOverrides sets the highest priority layer.
func WithOverrides(values map[string]any) Option {
	return func(c *Config) {
		c.overrides = maps.Clone(values)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.log = l
	}
}

// Observer is notified with the new settings after a reload changes them.
type Observer func(Settings)

// Config holds the effective settings and reloads them on demand.
type Config struct {
	mu sync.RWMutex

	fs        FileSystem
	path      string
	env       func(string) (string, bool)
	overrides map[string]any
	log       *logging.Logger

	settings Settings

	observers map[int]Observer
	nextID    int

	watcher *watcher.Watcher
	closed  bool
}

// New creates a Config holding the defaults. Call Load to read the
// configured layers.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        OSFS{},
		env:       os.LookupEnv,
		settings:  Default(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDefault(c.log).WithComponent("config")
	return c
}

// Path returns the settings file path.
func (c *Config) Path() string {
	return c.path
}

// Settings returns a copy of the effective settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Clone()
}

// Load resolves every layer and installs the result. On error the
// previous settings stay in effect. Observers run when the settings
// changed.
func (c *Config) Load() error {
	next, err := c.resolve()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	changed := !c.settings.Equal(next)
	c.settings = next
	observers := make([]Observer, 0, len(c.observers))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	c.mu.Unlock()

	if !changed {
		return nil
	}
	c.log.Info("settings loaded: scopes=%v check_timeout=%gs", next.ActiveScopes, next.CheckTimeout)
	for _, fn := range observers {
		c.notify(fn, next.Clone())
	}
	return nil
}

func (c *Config) notify(fn Observer, s Settings) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("settings observer panicked: %v", r)
		}
	}()
	fn(s)
}

// resolve merges defaults, file, environment and overrides.
func (c *Config) resolve() (Settings, error) {
	s := Default()

	if c.path != "" {
		values, err := LoadFile(c.fs, c.path)
		if err != nil {
			return Settings{}, err
		}
		if err := c.applyLayer(&s, c.path, values); err != nil {
			return Settings{}, err
		}
	}

	if c.env != nil {
		if err := c.applyLayer(&s, "environment", LoadEnv(c.env)); err != nil {
			return Settings{}, err
		}
	}

	if err := c.applyLayer(&s, "overrides", c.overrides); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (c *Config) applyLayer(s *Settings, source string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	unknown, err := s.apply(values)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	for _, key := range unknown {
		c.log.Warn("%s: unknown setting %q", source, key)
	}
	return nil
}

// Subscribe registers fn for settings changes and returns a function
// that removes it.
func (c *Config) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Watch reloads the settings file whenever it changes on disk. Reload
// failures are logged and keep the previous settings.
func (c *Config) Watch(delay time.Duration) error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.watcher != nil {
		return nil
	}

	w, err := watcher.New(func(string) {
		if err := c.Load(); err != nil {
			c.log.Warn("reload failed, keeping previous settings: %v", err)
		}
	}, watcher.WithDelay(delay), watcher.WithLogger(c.log))
	if err != nil {
		return err
	}
	if err := w.Add(c.path); err != nil {
		_ = w.Close()
		return err
	}
	c.watcher = w
	return nil
}

// Close stops watching and drops all observers.
func (c *Config) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	w := c.watcher
	c.watcher = nil
	c.observers = make(map[int]Observer)
	c.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}
