package event

import (
	"errors"
	"fmt"

	"github.com/dshills/urilens/internal/event/topic"
)

// Errors returned by the bus.
var (
	// ErrBusClosed indicates the bus no longer accepts events.
	ErrBusClosed = errors.New("event bus closed")

	// ErrInvalidTopic indicates an empty or malformed topic.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler indicates Subscribe was called without a handler.
	ErrNilHandler = errors.New("nil handler")

	// ErrSubscriptionNotFound indicates the subscription is unknown.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrHandlerPanic indicates a handler panicked.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError reports a failure of one handler for one event.
type HandlerError struct {
	Topic          topic.Topic
	SubscriptionID string
	Err            error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s for %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
