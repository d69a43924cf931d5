// Package ws is the websocket transport: one connection per client, JSON
// envelopes, a per-connection buffered sink drained by a single writer
// goroutine.
package ws

import (
	"conquest/domain/event"
	"context"

	"github.com/google/uuid"
)

// Sink is the per-connection delivery channel registered with the core.
// Consume is called by the notifier; the websocket writer goroutine takes
// the event from there.
type Sink struct {
	id     string
	Events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		id:     uuid.NewString(),
		Events: make(chan event.DomainEvent, bufferSize),
	}
}

func (s *Sink) ID() string { return s.id }

// Consume hands the event to the connection's writer. A full buffer drops
// the event rather than blocking the tick engine: a client that cannot
// keep up loses broadcasts, not the server.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
