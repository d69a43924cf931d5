package ws

import (
	"conquest/domain"
	"conquest/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests to websocket connections and bridges them
// to the game service. Inbound envelopes are validated at this boundary;
// the core never sees a malformed message. An unknown message kind is
// logged and dropped, the connection stays open.
type Server struct {
	log          *slog.Logger
	game         services.IGameService
	validate     *validator.Validate
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, game services.IGameService, bufferSize int, writeTimeout time.Duration) *Server {
	return &Server{
		log:      log,
		game:     game,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin is accepted, game clients connect from arbitrary pages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "err", err)
		return
	}

	sink := NewSink(s.bufferSize)
	s.log.Info("Client connected", "conn_id", sink.ID(), "remote", r.RemoteAddr)

	done := make(chan struct{})
	go s.writeLoop(conn, sink, done)
	s.readLoop(conn, sink, done)
}

// readLoop owns the connection lifetime: when the client goes away the
// session is unregistered and the writer stopped.
func (s *Server) readLoop(conn *websocket.Conn, sink *Sink, done chan struct{}) {
	defer func() {
		s.game.Disconnect(sink)
		close(done)
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.log.Info("Client disconnected", "conn_id", sink.ID(), "err", err)
			return
		}
		s.handle(sink, payload)
	}
}

// writeLoop is the single writer of the connection. It starts by
// acknowledging the connect with the connection id, then drains the sink.
func (s *Server) writeLoop(conn *websocket.Conn, sink *Sink, done chan struct{}) {
	ack := Outbound{Type: TypeACK, Data: struct {
		ID string `json:"id"`
	}{sink.ID()}}
	if err := s.write(conn, ack); err != nil {
		s.log.Warn("Failed to send ack", "conn_id", sink.ID(), "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case evt := <-sink.Events:
			if err := s.write(conn, toOutbound(evt)); err != nil {
				s.log.Debug("Write failed, client will be dropped on next read", "conn_id", sink.ID(), "err", err)
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, out Outbound) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(out)
}

func (s *Server) handle(sink *Sink, payload []byte) {
	var in Inbound
	if err := json.Unmarshal(payload, &in); err != nil {
		s.log.Warn("Malformed envelope dropped", "conn_id", sink.ID(), "err", err)
		return
	}
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("Invalid envelope dropped", "conn_id", sink.ID(), "err", err)
		return
	}

	switch in.Type {
	case TypeChat:
		s.game.Chat(sink, in.UserID, domain.RoomID(in.RoomID), in.Text)
	case TypeMsg:
		s.handleMsg(sink, in)
	}
}

func (s *Server) handleMsg(sink *Sink, in Inbound) {
	switch in.Cmd {
	case CmdRoomEnter:
		var data RoomEnterData
		if err := s.decode(in.Data, &data); err != nil {
			s.log.Warn("Invalid ROOM_ENTER dropped", "conn_id", sink.ID(), "err", err)
			return
		}
		user := domain.User{ID: data.User.ID, Team: data.User.Team, Money: data.User.Money}
		s.game.EnterRoom(sink, user, domain.RoomID(data.Room.ID), data.Room.Width, data.Room.Height)

	case CmdConquerCell:
		var data ConquerCellData
		if err := s.decode(in.Data, &data); err != nil {
			s.log.Warn("Invalid CONQUER_CELL dropped", "conn_id", sink.ID(), "err", err)
			return
		}
		if in.RoomID == "" {
			s.log.Warn("CONQUER_CELL without room dropped", "conn_id", sink.ID(), "user_id", in.UserID)
			return
		}
		s.game.Conquer(sink, in.UserID, domain.RoomID(in.RoomID), *data.ID, data.Team, data.Cost)

	default:
		s.log.Warn(fmt.Sprintf("Unhandled msg cmd [%s]", in.Cmd), "conn_id", sink.ID())
	}
}

func (s *Server) decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing data payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	return s.validate.Struct(out)
}
