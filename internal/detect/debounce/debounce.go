// Package debounce coalesces bursts of notifications into one deferred call.
//
// Every Notify increments a pending counter and schedules a callback after
// the configured delay. When a callback fires it decrements the counter and
// runs the action only if the counter reached zero, that is, only the
// callback belonging to the last notification of a burst does any work.
// Stale callbacks are not cancelled; they fire and do nothing.
package debounce

import (
	"sync"
	"time"
)

// PanicHandler receives the value recovered from a panicking action.
type PanicHandler func(recovered any)

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock sets the clock used to schedule callbacks.
func WithClock(c Clock) Option {
	return func(d *Debouncer) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithPanicHandler sets the handler called when the action panics.
// Without one the panic is recovered and dropped.
func WithPanicHandler(h PanicHandler) Option {
	return func(d *Debouncer) {
		d.onPanic = h
	}
}

// Debouncer runs an action once a burst of notifications has quiesced.
// It is safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	action  func()
	onPanic PanicHandler

	pending int
	nextID  uint64
	timers  map[uint64]Timer
	closed  bool

	fired uint64
	runs  uint64
}

// New creates a Debouncer that calls action delay after the last Notify.
// A negative delay is treated as zero.
func New(delay time.Duration, action func(), opts ...Option) *Debouncer {
	if delay < 0 {
		delay = 0
	}

	d := &Debouncer{
		clock:  RealClock(),
		delay:  delay,
		action: action,
		timers: make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify records a notification and schedules its deferred callback.
// Returns false if the debouncer is closed.
func (d *Debouncer) Notify() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	d.pending++
	d.nextID++
	id := d.nextID
	d.timers[id] = d.clock.AfterFunc(d.delay, func() {
		d.fire(id)
	})
	return true
}

// fire handles one deferred callback.
func (d *Debouncer) fire(id uint64) {
	d.mu.Lock()
	delete(d.timers, id)
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.fired++
	d.pending--
	if d.pending != 0 {
		d.mu.Unlock()
		return
	}
	d.runs++
	d.mu.Unlock()

	d.run()
}

// run calls the action, recovering any panic.
func (d *Debouncer) run() {
	defer func() {
		if r := recover(); r != nil && d.onPanic != nil {
			d.onPanic(r)
		}
	}()
	if d.action != nil {
		d.action()
	}
}

// SetDelay changes the delay used by future notifications.
// Callbacks already scheduled keep their original delay.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Delay returns the current delay.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// Pending returns the current value of the pending counter.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Close stops outstanding callbacks. Callbacks that are already running
// past their closed check still complete; every later one is a no-op.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}

// IsClosed returns true once Close has been called.
func (d *Debouncer) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Stats reports debouncer activity.
type Stats struct {
	Pending int
	Fired   uint64 // callbacks that reached the counter check
	Runs    uint64 // callbacks that ran the action
}

// Stats returns a snapshot of debouncer activity.
func (d *Debouncer) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Pending: d.pending,
		Fired:   d.fired,
		Runs:    d.runs,
	}
}
