package event

import (
	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/event/topic"
)

// Topics published by urilens hosts.
const (
	TopicBufferLoaded   topic.Topic = "buffer.loaded"
	TopicBufferModified topic.Topic = "buffer.modified"
	TopicBufferReloaded topic.Topic = "buffer.reloaded"
	TopicBufferClosed   topic.Topic = "buffer.closed"
	TopicBufferSyntax   topic.Topic = "buffer.syntax.changed"
	TopicPointerHover   topic.Topic = "pointer.hover"
	TopicConfigChanged  topic.Topic = "config.changed"
)

// BufferPayload accompanies the buffer lifecycle topics.
type BufferPayload struct {
	BufferID string
}

// SyntaxPayload accompanies buffer.syntax.changed.
type SyntaxPayload struct {
	BufferID string
	Syntax   string
}

// HoverPayload accompanies pointer.hover.
type HoverPayload struct {
	BufferID string
	Offset   int
	Zone     hover.Zone
}
