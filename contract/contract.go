//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"conquest/domain"
	"conquest/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one client connection seen from the core. ID is the
// transport-assigned connection identifier; the session directory relies on
// its uniqueness. Consume must never block the tick engine: implementations
// buffer and drop rather than wait.
type EventSink interface {
	ID() string
	Consume(ctx context.Context, e event.DomainEvent) error
}

// INotifier is the fan-out boundary used by the engine and the registries.
// Delivery is best effort; failures belong to the transport.
type INotifier interface {
	ToOne(sink EventSink, e event.DomainEvent)
	ToRoomExcept(roomID domain.RoomID, except EventSink, e event.DomainEvent)
	ToAll(e event.DomainEvent)
}
