package event

import (
	"sync/atomic"

	"github.com/dshills/urilens/internal/event/topic"
)

// FilterFunc decides whether an event reaches a subscriber.
type FilterFunc func(ev Event) bool

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *Subscription) {
		s.priority = p
	}
}

// WithFilter adds a filter evaluated before delivery.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(s *Subscription) {
		s.filter = f
	}
}

// WithOnce removes the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Subscription is a registered handler.
type Subscription struct {
	id       string
	seq      uint64
	pattern  topic.Topic
	handler  Handler
	priority Priority
	filter   FilterFunc
	once     bool

	cancelled atomic.Bool
	delivered atomic.Uint64
}

func newSubscription(id string, seq uint64, pattern topic.Topic, h Handler, opts ...SubscriptionOption) *Subscription {
	s := &Subscription{
		id:       id,
		seq:      seq,
		pattern:  pattern,
		handler:  h,
		priority: PriorityNormal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Pattern returns the topic pattern.
func (s *Subscription) Pattern() topic.Topic { return s.pattern }

// Priority returns the handler priority.
func (s *Subscription) Priority() Priority { return s.priority }

// Delivered returns how many events reached the handler.
func (s *Subscription) Delivered() uint64 { return s.delivered.Load() }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return !s.cancelled.Load() }

func (s *Subscription) cancel() { s.cancelled.Store(true) }

func (s *Subscription) accepts(ev Event) bool {
	if s.cancelled.Load() {
		return false
	}
	return s.filter == nil || s.filter(ev)
}
