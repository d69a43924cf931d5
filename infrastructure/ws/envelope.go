package ws

import (
	"conquest/domain/event"
	"encoding/json"
)

// Envelope types. MSG carries a game command in cmd; CHAT is the flat chat
// relay; ACK is server-to-client only, sent once on connect with the
// connection id.
const (
	TypeACK  = "ACK"
	TypeChat = "CHAT"
	TypeMsg  = "MSG"
)

// Client-to-server commands.
const (
	CmdRoomEnter   = "ROOM_ENTER"
	CmdConquerCell = "CONQUER_CELL"
)

// Inbound is the client-to-server envelope. Data stays raw until the cmd
// is known.
type Inbound struct {
	Type   string          `json:"type" validate:"required,oneof=CHAT MSG"`
	Cmd    string          `json:"cmd" validate:"required_if=Type MSG"`
	UserID string          `json:"userId" validate:"required"`
	RoomID string          `json:"roomId"`
	Text   string          `json:"text"`
	Data   json.RawMessage `json:"data"`
}

// RoomEnterData is the MSG/ROOM_ENTER payload.
type RoomEnterData struct {
	User struct {
		ID    string `json:"id" validate:"required"`
		Team  string `json:"team"`
		Money int    `json:"money"`
	} `json:"user" validate:"required"`
	Room struct {
		ID     string `json:"id" validate:"required"`
		Width  int    `json:"width" validate:"required,gt=0"`
		Height int    `json:"height" validate:"required,gt=0"`
	} `json:"room" validate:"required"`
}

// ConquerCellData is the MSG/CONQUER_CELL payload. The cell id is a
// pointer so a bid on cell 0 still passes the required check.
type ConquerCellData struct {
	ID   *int   `json:"id" validate:"required,gte=0"`
	Team string `json:"team"`
	Cost int    `json:"cost" validate:"gte=0"`
}

// Outbound is the server-to-client envelope.
type Outbound struct {
	Type   string `json:"type"`
	Cmd    string `json:"cmd,omitempty"`
	UserID string `json:"userId,omitempty"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// toOutbound maps a domain event onto the wire. Chat events ride their own
// envelope type; everything else is a MSG with the event kind as cmd.
func toOutbound(e event.DomainEvent) Outbound {
	out := Outbound{
		UserID: e.UserID(),
		RoomID: string(e.RoomID()),
		Data:   e.Payload(),
	}
	if e.Kind() == event.Chat {
		out.Type = TypeChat
		return out
	}
	out.Type = TypeMsg
	out.Cmd = string(e.Kind())
	return out
}
