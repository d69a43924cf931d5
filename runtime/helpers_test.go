package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"conquest/domain/event"
	"context"
	"sync"
)

// stubSink is a connection stand-in recording what was delivered to it.
type stubSink struct {
	id     string
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *stubSink) ID() string { return s.id }

func (s *stubSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *stubSink) Received() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *stubSink) ReceivedKinds() []event.Kind {
	var kinds []event.Kind
	for _, e := range s.Received() {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

// recordingNotifier captures engine fan-out without a transport.
type recordingNotifier struct {
	mu   sync.Mutex
	one  []unicast
	room []roomcast
	all  []event.DomainEvent
}

type unicast struct {
	sinkID string
	event  event.DomainEvent
}

type roomcast struct {
	roomID   domain.RoomID
	exceptID string
	event    event.DomainEvent
}

func (n *recordingNotifier) ToOne(sink contract.EventSink, e event.DomainEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.one = append(n.one, unicast{sinkID: sink.ID(), event: e})
}

func (n *recordingNotifier) ToRoomExcept(roomID domain.RoomID, except contract.EventSink, e event.DomainEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	exceptID := ""
	if except != nil {
		exceptID = except.ID()
	}
	n.room = append(n.room, roomcast{roomID: roomID, exceptID: exceptID, event: e})
}

func (n *recordingNotifier) ToAll(e event.DomainEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, e)
}

func (n *recordingNotifier) unicastsTo(sinkID string) []event.DomainEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []event.DomainEvent
	for _, u := range n.one {
		if u.sinkID == sinkID {
			out = append(out, u.event)
		}
	}
	return out
}

func (n *recordingNotifier) broadcastKinds() []event.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var kinds []event.Kind
	for _, e := range n.all {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}
