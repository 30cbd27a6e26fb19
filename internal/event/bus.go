package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/urilens/internal/event/topic"
	"github.com/dshills/urilens/internal/logging"
)

// Priority determines handler execution order. Lower values run first.
type Priority int

const (
	// PriorityCritical is for state owners such as the detection manager.
	PriorityCritical Priority = 0

	// PriorityNormal is the default.
	PriorityNormal Priority = 200

	// PriorityLow is for logging and status handlers.
	PriorityLow Priority = 300
)

// Event is one published notification.
type Event struct {
	Topic   topic.Topic
	Payload any
	Time    time.Time
}

// Handler processes an event.
type Handler func(ctx context.Context, ev Event) error

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bus) {
		b.log = l
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
	Subscriptions int
}

// Bus delivers events to subscribers synchronously.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64
	closed bool

	log *logging.Logger
	now func() time.Time

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// New creates a bus.
func New(opts ...Option) *Bus {
	b := &Bus{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.log = logging.OrDefault(b.log).WithComponent("event")
	return b
}

// Subscribe registers h for topics matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	sub := newSubscription(fmt.Sprintf("sub-%d", b.nextID), b.nextID, pattern, h, opts...)
	b.subs = append(b.subs, sub)
	slices.SortStableFunc(b.subs, func(a, c *Subscription) int {
		if a.priority != c.priority {
			return int(a.priority) - int(c.priority)
		}
		return int(a.seq) - int(c.seq)
	})
	return sub, nil
}

// Unsubscribe removes sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = slices.Delete(b.subs, i, i+1)
			sub.cancel()
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers payload on t to every matching subscriber and returns
// the joined handler errors.
func (b *Bus) Publish(ctx context.Context, t topic.Topic, payload any) error {
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)
	ev := Event{Topic: t, Payload: payload, Time: b.now()}

	var errs []error
	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !s.accepts(ev) {
			continue
		}
		if err := b.deliver(ctx, s, ev); err != nil {
			b.handlerErrors.Add(1)
			b.log.Warn("%v", err)
			errs = append(errs, err)
		}
		if s.once {
			_ = b.Unsubscribe(s)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &HandlerError{
				Topic:          ev.Topic,
				SubscriptionID: s.id,
				Err:            fmt.Errorf("%w: %v", ErrHandlerPanic, r),
			}
		}
	}()

	b.delivered.Add(1)
	s.delivered.Add(1)
	if herr := s.handler(ctx, ev); herr != nil {
		return &HandlerError{Topic: ev.Topic, SubscriptionID: s.id, Err: herr}
	}
	return nil
}

// Stats returns the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		Subscriptions: n,
	}
}

// Close stops delivery and drops every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		s.cancel()
	}
	b.subs = nil
}
