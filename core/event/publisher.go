package event

import (
	"context"
	"io"
	"log/slog"
)

// Publisher publishes domain events via a transport. It is a stateless
// client with no lifecycle management.
//
// Event emission is advisory: the security core's primary operations must
// never fail because a collaborator could not be notified, so Publish
// failures are the caller's to log and absorb.
type Publisher struct {
	transport Transport
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the logger for dispatch failures.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates an event publisher with the given transport.
func NewPublisher(transport Transport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: transport,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish wraps the payload into an Event and dispatches it.
func (p *Publisher) Publish(ctx context.Context, payload Payload) error {
	e := New(payload)
	if err := p.transport.Dispatch(ctx, e); err != nil {
		p.logger.WarnContext(ctx, "event dispatch failed",
			slog.String("event", e.Name),
			slog.Any("error", err))
		return err
	}
	return nil
}

// Emitter is the narrow publishing capability injected into core
// components. *Publisher satisfies it; tests substitute fakes.
type Emitter interface {
	Publish(ctx context.Context, payload Payload) error
}

// Discard is an Emitter that drops every event. Useful as a default so
// components never need nil checks.
var Discard Emitter = discardEmitter{}

type discardEmitter struct{}

func (discardEmitter) Publish(context.Context, Payload) error { return nil }
