package event

import (
	"context"
	"sync/atomic"
)

// Transport defines how events are dispatched to consumers.
type Transport interface {
	// Dispatch sends an event for delivery.
	// Returns an error if dispatch fails (e.g., buffer full).
	Dispatch(ctx context.Context, e Event) error
}

// Handler processes a delivered event.
type Handler func(ctx context.Context, e Event) error

// syncTransport invokes handlers inline on Dispatch. Blocking, ordered,
// and deterministic; intended for tests and small deployments.
type syncTransport struct {
	handlers []Handler
}

// NewSyncTransport creates a transport that calls each handler in order
// during Dispatch. The first handler error aborts delivery and is
// returned to the publisher.
func NewSyncTransport(handlers ...Handler) Transport {
	return &syncTransport{handlers: handlers}
}

func (t *syncTransport) Dispatch(ctx context.Context, e Event) error {
	for _, h := range t.handlers {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ChannelTransport delivers events asynchronously over a buffered channel.
// It is a passive wire: consumers drain Events from Subscribe themselves.
//
// Dispatch is non-blocking; a full buffer returns ErrBufferFull rather
// than stalling the authentication path.
type ChannelTransport struct {
	ch     chan Event
	closed atomic.Bool
}

// NewChannelTransport creates a channel-based async transport with the
// given buffer size.
func NewChannelTransport(bufferSize int) *ChannelTransport {
	if bufferSize < 1 {
		panic("event: bufferSize must be at least 1")
	}
	return &ChannelTransport{ch: make(chan Event, bufferSize)}
}

// Dispatch sends the event to the channel, returning ErrBufferFull
// immediately when the buffer is full.
func (t *ChannelTransport) Dispatch(ctx context.Context, e Event) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	select {
	case t.ch <- e:
		return nil
	default:
		return ErrBufferFull
	}
}

// Subscribe returns the event channel for consumers to drain.
func (t *ChannelTransport) Subscribe() <-chan Event {
	return t.ch
}

// Close closes the event channel. Idempotent.
func (t *ChannelTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		close(t.ch)
	}
	return nil
}
