package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"conquest/domain/event"
	"conquest/moderation"
	"conquest/runtime/workers"
	"context"
	"log/slog"
	"time"
)

// Orchestrator wires the session directory, the room registry, the pending
// buffer and the tick engine together, and owns their lifetime. All state
// is explicit and injected; nothing here is package-global, so the whole
// server can be constructed and torn down from run().
type Orchestrator struct {
	log        *slog.Logger
	supervisor contract.ISupervisor
	sessions   *SessionDirectory
	rooms      *RoomRegistry
	buffer     *BidBuffer
	notifier   contract.INotifier
	moderator  *moderation.Moderator
	engine     *TickEngine

	tickInterval      time.Duration
	leftTurn          int
	telemetryInterval time.Duration
	startedAt         time.Time
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	sessions *SessionDirectory, rooms *RoomRegistry, buffer *BidBuffer,
	notifier contract.INotifier, moderator *moderation.Moderator,
	tickInterval time.Duration, leftTurn int, telemetryInterval time.Duration) *Orchestrator {
	o := &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		sessions:          sessions,
		rooms:             rooms,
		buffer:            buffer,
		notifier:          notifier,
		moderator:         moderator,
		tickInterval:      tickInterval,
		leftTurn:          leftTurn,
		telemetryInterval: telemetryInterval,
	}
	o.engine = NewTickEngine(log, tickInterval, leftTurn, buffer, rooms, notifier)
	return o
}

// EnterRoom handles a ROOM_ENTER message: register the session (idempotent
// on reconnect), lazily create the room, add the member, then tell the
// others about the newcomer and acknowledge the joiner with the full room.
func (o *Orchestrator) EnterRoom(conn contract.EventSink, user domain.User, roomID domain.RoomID, width, height int) {
	o.sessions.Register(conn, user, roomID)
	o.rooms.GetOrCreate(roomID, width, height)
	o.rooms.Enter(roomID, user.ID)

	snap, ok := o.rooms.Find(roomID)
	if !ok {
		// Only possible if an admin removed the room between the two calls.
		o.log.Warn("Room vanished during join", "room_id", roomID, "user_id", user.ID)
		return
	}

	o.notifier.ToRoomExcept(roomID, conn, event.RoomNewUserEvent{
		Room:      roomID,
		User:      user,
		RoomUsers: len(snap.Users),
	})
	o.notifier.ToOne(conn, event.RoomInfoEvent{User: user.ID, Room: snap})
}

// Conquer enqueues a bid for the next tick. Fire and forget: the answer
// arrives as CONQUER_CELL_SUCCESS or CONQUER_CELL_FAILED once the tick
// engine has drained the batch.
func (o *Orchestrator) Conquer(conn contract.EventSink, userID string, roomID domain.RoomID, cellID int, team string, cost int) {
	seq := o.buffer.Enqueue(domain.ConquestBid{
		UserID: userID,
		Room:   roomID,
		CellID: cellID,
		Team:   team,
		Cost:   cost,
	}, conn)
	o.log.Debug("Bid enqueued", "seq", seq, "room_id", roomID, "cell_id", cellID, "user_id", userID)
}

// Chat relays a text message to the room (excluding the sender) or, with
// an empty room id, to every connection. Stateless, but the text goes
// through the moderator first when one is configured.
func (o *Orchestrator) Chat(conn contract.EventSink, userID string, roomID domain.RoomID, text string) {
	if o.moderator != nil {
		text = o.moderator.Censor(text)
	}
	evt := event.ChatEvent{Room: roomID, User: userID, Text: text}
	if roomID != "" {
		o.notifier.ToRoomExcept(roomID, conn, evt)
		return
	}
	o.notifier.ToAll(evt)
}

// Disconnect tears down whatever session the closed connection owned and
// broadcasts the departure to everyone. A connection without a session is
// a client that never joined a room.
func (o *Orchestrator) Disconnect(conn contract.EventSink) {
	session, ok := o.sessions.Unregister(conn)
	if !ok {
		o.log.Debug("Disconnect without session", "conn_id", conn.ID())
		return
	}
	o.rooms.Exit(session.Room, session.User.ID)
	o.notifier.ToAll(event.RoomExitUserEvent{Room: session.Room, User: session.User.ID})
}

// RemoveRoom deletes a room, administrative operation. Members are not
// notified implicitly.
func (o *Orchestrator) RemoveRoom(roomID domain.RoomID) bool {
	return o.rooms.Remove(roomID)
}

// RoomSnapshots exposes read-only room state for the debug endpoints.
func (o *Orchestrator) RoomSnapshots() []domain.Snapshot {
	return o.rooms.Snapshots()
}

// Stats exposes coarse gauges for the debug endpoints.
func (o *Orchestrator) Stats() map[string]any {
	return map[string]any{
		"uptime":      time.Since(o.startedAt).Round(time.Second).String(),
		"sessions":    o.sessions.Count(),
		"rooms":       o.rooms.Count(),
		"pendingBids": o.buffer.Depth(),
		"ticks":       o.engine.Ticks(),
	}
}

// Start registers the tick engine and the telemetry worker with the
// supervisor and launches supervision in the background. The supervisor
// restarts a crashed worker; a clean context cancellation stops them all.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.startedAt = time.Now()

	telemetry := workers.NewTelemetryWorker(o.log, o.telemetryInterval, func() workers.Gauges {
		return workers.Gauges{
			Sessions:    o.sessions.Count(),
			Rooms:       o.rooms.Count(),
			PendingBids: o.buffer.Depth(),
			Ticks:       o.engine.Ticks(),
		}
	})

	o.supervisor.Add(o.engine)
	o.supervisor.Add(telemetry)

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of all supervised workers.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
