// Package event defines the outbound domain events produced by the engine
// and the registries, and the wire command names they map to.
package event

import (
	"conquest/domain"
)

// Kind is the wire command name of an event.
type Kind string

const (
	RoomInfo           Kind = "ROOM_INFO"
	RoomNewUser        Kind = "ROOM_NEWUSER"
	RoomExitUser       Kind = "ROOM_EXITUSER"
	UpdateCell         Kind = "UPDATE_CELL"
	ConquerCellSuccess Kind = "CONQUER_CELL_SUCCESS"
	ConquerCellFailed  Kind = "CONQUER_CELL_FAILED"
	GotoFinal          Kind = "GOTO_FINAL"
	GameOver           Kind = "GAME_OVER"
	Chat               Kind = "CHAT"
)

// DomainEvent is anything deliverable through an EventSink.
// UserID is empty for system events (lifecycle broadcasts).
type DomainEvent interface {
	Kind() Kind
	RoomID() domain.RoomID
	UserID() string
	Payload() any
}

// RoomInfoEvent acknowledges a join to the joining user with the full room
// snapshot.
type RoomInfoEvent struct {
	User string
	Room domain.Snapshot
}

func (e RoomInfoEvent) Kind() Kind            { return RoomInfo }
func (e RoomInfoEvent) RoomID() domain.RoomID { return e.Room.ID }
func (e RoomInfoEvent) UserID() string        { return e.User }
func (e RoomInfoEvent) Payload() any {
	return struct {
		Room domain.Snapshot `json:"room"`
	}{e.Room}
}

// RoomNewUserEvent announces a join to the other members of the room.
type RoomNewUserEvent struct {
	Room      domain.RoomID
	User      domain.User
	RoomUsers int
}

func (e RoomNewUserEvent) Kind() Kind            { return RoomNewUser }
func (e RoomNewUserEvent) RoomID() domain.RoomID { return e.Room }
func (e RoomNewUserEvent) UserID() string        { return e.User.ID }
func (e RoomNewUserEvent) Payload() any {
	return struct {
		User      domain.User `json:"user"`
		RoomUsers int         `json:"roomUsers"`
	}{e.User, e.RoomUsers}
}

// RoomExitUserEvent announces a departure. Broadcast to everyone, since the
// departing connection is already gone.
type RoomExitUserEvent struct {
	Room domain.RoomID
	User string
}

func (e RoomExitUserEvent) Kind() Kind            { return RoomExitUser }
func (e RoomExitUserEvent) RoomID() domain.RoomID { return e.Room }
func (e RoomExitUserEvent) UserID() string        { return e.User }
func (e RoomExitUserEvent) Payload() any          { return nil }

// UpdateCellEvent tells the other members of a room that a cell changed
// owner during the last tick.
type UpdateCellEvent struct {
	Room      domain.RoomID
	User      string
	Cell      domain.Cell
	RoomValue int
}

func (e UpdateCellEvent) Kind() Kind            { return UpdateCell }
func (e UpdateCellEvent) RoomID() domain.RoomID { return e.Room }
func (e UpdateCellEvent) UserID() string        { return e.User }
func (e UpdateCellEvent) Payload() any {
	return struct {
		Cell      domain.Cell `json:"cell"`
		RoomValue int         `json:"roomValue"`
	}{e.Cell, e.RoomValue}
}

// ConquerResultEvent is the unicast win/loss answer to a bid. The cell
// carried is the post-auction state of the contested cell.
type ConquerResultEvent struct {
	Room domain.RoomID
	User string
	Cell domain.Cell
	Won  bool
}

func (e ConquerResultEvent) Kind() Kind {
	if e.Won {
		return ConquerCellSuccess
	}
	return ConquerCellFailed
}
func (e ConquerResultEvent) RoomID() domain.RoomID { return e.Room }
func (e ConquerResultEvent) UserID() string        { return e.User }
func (e ConquerResultEvent) Payload() any {
	return struct {
		Cell domain.Cell `json:"cell"`
	}{e.Cell}
}

// LifecycleEvent is a countdown broadcast: GOTO_FINAL while turns remain,
// GAME_OVER when the room completes.
type LifecycleEvent struct {
	Room domain.Snapshot
	Over bool
}

func (e LifecycleEvent) Kind() Kind {
	if e.Over {
		return GameOver
	}
	return GotoFinal
}
func (e LifecycleEvent) RoomID() domain.RoomID { return e.Room.ID }
func (e LifecycleEvent) UserID() string        { return "" }
func (e LifecycleEvent) Payload() any {
	return struct {
		Room domain.Snapshot `json:"room"`
	}{e.Room}
}

// ChatEvent is a stateless chat relay. Room is empty for server-wide chat.
type ChatEvent struct {
	Room domain.RoomID
	User string
	Text string
}

func (e ChatEvent) Kind() Kind            { return Chat }
func (e ChatEvent) RoomID() domain.RoomID { return e.Room }
func (e ChatEvent) UserID() string        { return e.User }
func (e ChatEvent) Payload() any {
	return struct {
		Text string `json:"text"`
	}{e.Text}
}
