package detect

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/urilens/internal/detect/debounce"
	"github.com/dshills/urilens/internal/detect/match"
	"github.com/dshills/urilens/internal/detect/store"
	"github.com/dshills/urilens/internal/logging"
)

// Observer watches one buffer. It is created when the buffer becomes
// applicable and disposed when the buffer closes or stops being applicable.
type Observer struct {
	id          uuid.UUID
	buf         Buffer
	store       *store.Store
	highlighter Highlighter
	debouncer   *debounce.Debouncer
	log         *logging.Logger

	// scanMu serialises scans so an older snapshot never publishes after a
	// newer one.
	scanMu sync.Mutex

	// mu guards disposed and every store or highlight write.
	mu       sync.Mutex
	disposed bool

	scans    atomic.Uint64
	failures atomic.Uint64
}

func newObserver(buf Buffer, s *store.Store, h Highlighter, delay time.Duration, clock debounce.Clock, log *logging.Logger) *Observer {
	o := &Observer{
		id:          uuid.New(),
		buf:         buf,
		store:       s,
		highlighter: h,
	}
	o.log = log.WithFields(map[string]any{
		"buffer":   buf.ID(),
		"observer": o.id.String(),
	})
	o.debouncer = debounce.New(delay, o.scan,
		debounce.WithClock(clock),
		debounce.WithPanicHandler(o.recoverScan),
	)
	return o
}

// ID returns the observer's instance identity. A buffer that is closed and
// reopened gets a new observer with a new identity.
func (o *Observer) ID() string {
	return o.id.String()
}

// BufferID returns the identity of the observed buffer.
func (o *Observer) BufferID() string {
	return o.buf.ID()
}

// Notify records a change or load of the buffer.
func (o *Observer) Notify() bool {
	return o.debouncer.Notify()
}

// Pending returns the observer's pending counter.
func (o *Observer) Pending() int {
	return o.debouncer.Pending()
}

// Scans returns the number of completed scans.
func (o *Observer) Scans() uint64 {
	return o.scans.Load()
}

// Failures returns the number of scans that panicked.
func (o *Observer) Failures() uint64 {
	return o.failures.Load()
}

// setDelay changes the quiescence delay for later notifications.
func (o *Observer) setDelay(d time.Duration) {
	o.debouncer.SetDelay(d)
}

// scan matches the current buffer text and publishes the result.
func (o *Observer) scan() {
	o.scanMu.Lock()
	defer o.scanMu.Unlock()

	if o.isDisposed() {
		return
	}

	text := o.buf.Text()
	regions := match.Find(text)

	o.mu.Lock()
	defer o.mu.Unlock()

	// Dispose may have won the race while matching.
	if o.disposed {
		return
	}
	o.store.Replace(o.buf.ID(), regions)
	o.highlighter.SetRegions(o.buf.ID(), match.Clone(regions))
	o.scans.Add(1)
	o.log.Debug("scan found %d data URIs in %d bytes", len(regions), len(text))
}

// recoverScan handles a panic raised by scan. The previously published
// regions stay in place.
func (o *Observer) recoverScan(recovered any) {
	o.failures.Add(1)
	o.log.Error("scan failed: %v", recovered)
}

func (o *Observer) isDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Dispose stops the observer and withdraws its regions. Pending callbacks
// become no-ops and can never republish state.
func (o *Observer) Dispose() {
	o.debouncer.Close()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.disposed {
		return
	}
	o.disposed = true
	o.store.Delete(o.buf.ID())
	o.highlighter.ClearRegions(o.buf.ID())
	o.log.Debug("observer disposed")
}
