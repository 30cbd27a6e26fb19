// Package watcher reports changes to individual files.
//
// Each file's parent directory is watched so that editors replacing a
// file by rename are still noticed. Bursts of events for one file are
// coalesced and the handler runs once the file has been quiet for the
// configured delay.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/urilens/internal/detect/debounce"
	"github.com/dshills/urilens/internal/logging"
)

// Errors returned by the watcher.
var (
	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrNotWatching indicates the path is not being watched.
	ErrNotWatching = errors.New("path not watched")
)

// DefaultDelay is the quiet period before a change is reported.
const DefaultDelay = 100 * time.Millisecond

// Handler is called with the absolute path of a changed file.
type Handler func(path string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.delay = d
		}
	}
}

// WithClock sets the clock used for coalescing.
func WithClock(c debounce.Clock) Option {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// Watcher monitors a set of files.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	handler Handler
	delay   time.Duration
	clock   debounce.Clock
	log     *logging.Logger

	// files maps absolute file paths to their coalescer.
	files map[string]*debounce.Debouncer
	// dirs counts watched files per directory.
	dirs map[string]int

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher that calls handler for changed files.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		handler: handler,
		delay:   DefaultDelay,
		clock:   debounce.RealClock(),
		files:   make(map[string]*debounce.Debouncer),
		dirs:    make(map[string]int),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = logging.OrDefault(w.log).WithComponent("watcher")

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching path. The file need not exist yet, but its
// directory must.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++

	w.files[abs] = debounce.New(w.delay, func() { w.handler(abs) },
		debounce.WithClock(w.clock),
		debounce.WithPanicHandler(func(r any) {
			w.log.Error("change handler for %s panicked: %v", abs, r)
		}),
	)
	w.log.Debug("watching %s", abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	d, ok := w.files[abs]
	if !ok {
		return ErrNotWatching
	}
	d.Close()
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// Close stops the watcher. Pending notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for _, d := range w.files {
		d.Close()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// handle routes one fsnotify event to the coalescer of its file.
func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	d, ok := w.files[abs]
	w.mu.Unlock()
	if !ok {
		return
	}
	d.Notify()
}
