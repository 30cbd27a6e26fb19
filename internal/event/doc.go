// Package event provides the topic based bus that carries host
// notifications (buffer loads, edits, closes, syntax changes, pointer
// hovers and settings changes) to their consumers.
//
// Delivery is synchronous: Publish runs every matching handler in the
// caller's goroutine, ordered by priority and then by subscription
// order. Handler panics are recovered and reported as errors so a
// misbehaving consumer cannot take the publisher down.
//
// Subscribing:
//
//	sub, err := bus.Subscribe(event.TopicBufferModified, func(ctx context.Context, ev event.Event) error {
//		p := ev.Payload.(event.BufferPayload)
//		return manager.Modified(p.BufferID)
//	})
//
// Patterns may use "*" for one segment and "**" for any number.
package event
