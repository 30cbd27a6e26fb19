package debounce

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing.
	// Returns false if the callback already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks after a delay without blocking the caller.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock {
	return realClock{}
}

// ManualClock is a Clock whose time only moves when Advance is called.
// Callbacks run synchronously inside Advance, in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Duration
	seq      uint64
	fn       func()
	done     bool
}

// NewManualClock creates a manual clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{
		clock:    c,
		deadline: c.now + d,
		seq:      c.seq,
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer that became due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()

	for {
		t := c.nextDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

// nextDue removes and returns the earliest due timer, or nil.
func (c *ManualClock) nextDue() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline != c.timers[j].deadline {
			return c.timers[i].deadline < c.timers[j].deadline
		}
		return c.timers[i].seq < c.timers[j].seq
	})

	if len(c.timers) == 0 || c.timers[0].deadline > c.now {
		return nil
	}
	t := c.timers[0]
	t.done = true
	c.timers = c.timers[1:]
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}
