package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/event/topic"
	"github.com/dshills/urilens/internal/logging"
)

func newTestBus() *Bus {
	return New(WithLogger(logging.Null()))
}

func TestBus_PublishMatchesPatterns(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	var got []string
	record := func(name string) Handler {
		return func(_ context.Context, ev Event) error {
			got = append(got, name+":"+ev.Topic.String())
			return nil
		}
	}

	mustSubscribe(t, b, TopicBufferModified, record("exact"))
	mustSubscribe(t, b, "buffer.*", record("single"))
	mustSubscribe(t, b, "buffer.**", record("multi"))
	mustSubscribe(t, b, TopicPointerHover, record("hover"))

	ctx := context.Background()
	if err := b.Publish(ctx, TopicBufferModified, BufferPayload{BufferID: "a"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.Publish(ctx, TopicBufferSyntax, SyntaxPayload{BufferID: "a", Syntax: "CSS"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := []string{
		"exact:buffer.modified",
		"single:buffer.modified",
		"multi:buffer.modified",
		"multi:buffer.syntax.changed",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_PriorityOrder(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	var order []string
	add := func(name string, p Priority) {
		_, err := b.Subscribe(TopicBufferLoaded, func(context.Context, Event) error {
			order = append(order, name)
			return nil
		}, WithPriority(p))
		if err != nil {
			t.Fatal(err)
		}
	}
	add("status", PriorityLow)
	add("plain-1", PriorityNormal)
	add("manager", PriorityCritical)
	add("plain-2", PriorityNormal)

	if err := b.Publish(context.Background(), TopicBufferLoaded, BufferPayload{BufferID: "a"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := []string{"manager", "plain-1", "plain-2", "status"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_HandlerErrorsAndPanics(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	errBoom := errors.New("boom")
	reached := false

	mustSubscribe(t, b, TopicPointerHover, func(context.Context, Event) error { return errBoom })
	mustSubscribe(t, b, TopicPointerHover, func(context.Context, Event) error { panic("bad handler") })
	mustSubscribe(t, b, TopicPointerHover, func(_ context.Context, ev Event) error {
		p := ev.Payload.(HoverPayload)
		reached = p.Zone == hover.ZoneText && p.Offset == 7
		return nil
	})

	err := b.Publish(context.Background(), TopicPointerHover, HoverPayload{BufferID: "a", Offset: 7, Zone: hover.ZoneText})
	if !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("err = %v, want ErrHandlerPanic", err)
	}
	var herr *HandlerError
	if !errors.As(err, &herr) {
		t.Errorf("err = %v, want HandlerError", err)
	}
	if !reached {
		t.Error("handler after the failing ones was not reached")
	}

	stats := b.Stats()
	if stats.HandlerErrors != 2 || stats.HandlerPanics != 1 {
		t.Errorf("Stats = %+v, want 2 errors, 1 panic", stats)
	}
}

func TestBus_FilterOnceUnsubscribe(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	var filtered, once, plain int
	mustSubscribe(t, b, TopicBufferModified, func(context.Context, Event) error {
		filtered++
		return nil
	}, WithFilter(func(ev Event) bool {
		return ev.Payload.(BufferPayload).BufferID == "keep"
	}))
	mustSubscribe(t, b, TopicBufferModified, func(context.Context, Event) error {
		once++
		return nil
	}, WithOnce())
	sub := mustSubscribe(t, b, TopicBufferModified, func(context.Context, Event) error {
		plain++
		return nil
	})

	ctx := context.Background()
	_ = b.Publish(ctx, TopicBufferModified, BufferPayload{BufferID: "drop"})
	_ = b.Publish(ctx, TopicBufferModified, BufferPayload{BufferID: "keep"})

	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if sub.IsActive() {
		t.Error("subscription still active")
	}
	if err := b.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe = %v, want ErrSubscriptionNotFound", err)
	}
	_ = b.Publish(ctx, TopicBufferModified, BufferPayload{BufferID: "keep"})

	if filtered != 2 {
		t.Errorf("filtered = %d, want 2", filtered)
	}
	if once != 1 {
		t.Errorf("once = %d, want 1", once)
	}
	if plain != 2 {
		t.Errorf("plain = %d, want 2", plain)
	}
}

func TestBus_InvalidInput(t *testing.T) {
	b := newTestBus()

	if _, err := b.Subscribe("", func(context.Context, Event) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") = %v, want ErrInvalidTopic", err)
	}
	if _, err := b.Subscribe(TopicBufferLoaded, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) = %v, want ErrNilHandler", err)
	}
	if err := b.Publish(context.Background(), "buffer.*", nil); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(pattern) = %v, want ErrInvalidTopic", err)
	}

	b.Close()
	if err := b.Publish(context.Background(), TopicBufferLoaded, nil); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish after Close = %v, want ErrBusClosed", err)
	}
	if _, err := b.Subscribe(TopicBufferLoaded, func(context.Context, Event) error { return nil }); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Subscribe after Close = %v, want ErrBusClosed", err)
	}
}

func TestBus_CancelledContext(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	called := false
	mustSubscribe(t, b, TopicBufferLoaded, func(context.Context, Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, TopicBufferLoaded, BufferPayload{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish = %v, want context.Canceled", err)
	}
	if called {
		t.Error("handler ran with a cancelled context")
	}
}

func mustSubscribe(t *testing.T, b *Bus, pattern topic.Topic, h Handler, opts ...SubscriptionOption) *Subscription {
	t.Helper()
	sub, err := b.Subscribe(pattern, h, opts...)
	if err != nil {
		t.Fatalf("Subscribe(%q): %v", pattern, err)
	}
	return sub
}
