package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"conquest/domain/event"
	"context"
	"log/slog"
	"time"
)

// Notifier fans out domain events to one connection, to the members of a
// room, or to everyone. It resolves room members to connections through
// the session directory, so a user in several rooms is still reached on
// the right connection.
//
// Delivery is best effort with no retries: a failed or slow sink is the
// transport's concern, and the tick engine must never wait on one. Each
// delivery is bounded by the configured timeout.
type Notifier struct {
	log         *slog.Logger
	sessions    *SessionDirectory
	rooms       *RoomRegistry
	sinkTimeout time.Duration
}

func NewNotifier(log *slog.Logger, sessions *SessionDirectory, rooms *RoomRegistry, sinkTimeout time.Duration) *Notifier {
	return &Notifier{log: log, sessions: sessions, rooms: rooms, sinkTimeout: sinkTimeout}
}

func (n *Notifier) ToOne(sink contract.EventSink, e event.DomainEvent) {
	n.deliver(sink, e)
}

// ToRoomExcept delivers to every member of the room except the excluded
// connection, usually the one that caused the event.
func (n *Notifier) ToRoomExcept(roomID domain.RoomID, except contract.EventSink, e event.DomainEvent) {
	for _, userID := range n.rooms.Members(roomID) {
		sink, ok := n.sessions.SinkFor(userID, roomID)
		if !ok {
			continue
		}
		if except != nil && sink.ID() == except.ID() {
			continue
		}
		n.deliver(sink, e)
	}
}

func (n *Notifier) ToAll(e event.DomainEvent) {
	for _, sink := range n.sessions.AllSinks() {
		n.deliver(sink, e)
	}
}

func (n *Notifier) deliver(sink contract.EventSink, e event.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), n.sinkTimeout)
	defer cancel()

	if err := sink.Consume(ctx, e); err != nil {
		n.log.Debug("Event delivery failed", "kind", e.Kind(), "conn_id", sink.ID(), "err", err)
	}
}
