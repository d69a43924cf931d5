package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"log/slog"
	"sync"
)

// Session binds a game identity to the connection currently speaking for
// it. The connection reference is the only mutable part: a reconnect under
// the same (user, room) replaces it, most-recent connection wins.
type Session struct {
	User domain.User
	Room domain.RoomID
	Conn contract.EventSink
}

type sessionKey struct {
	userID string
	roomID domain.RoomID
}

// SessionDirectory maps connections to user identities and their current
// room. Keyed by stable user identifier rather than by connection handle,
// so domain identity survives reconnects.
type SessionDirectory struct {
	mu       sync.RWMutex
	log      *slog.Logger
	sessions map[sessionKey]*Session
}

func NewSessionDirectory(log *slog.Logger) *SessionDirectory {
	return &SessionDirectory{
		log:      log,
		sessions: make(map[sessionKey]*Session),
	}
}

// Register records a user joining a room through conn. If a session already
// exists for that (user, room), only the connection reference is updated:
// a reconnect must not duplicate the user.
func (d *SessionDirectory) Register(conn contract.EventSink, user domain.User, roomID domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := sessionKey{userID: user.ID, roomID: roomID}
	if s, ok := d.sessions[key]; ok {
		s.Conn = conn
		d.log.Info("Session connection refreshed", "user_id", user.ID, "room_id", roomID, "conn_id", conn.ID())
		return
	}

	d.sessions[key] = &Session{User: user, Room: roomID, Conn: conn}
	d.log.Info("Session registered", "user_id", user.ID, "room_id", roomID, "conn_id", conn.ID())
}

// Unregister removes the session owned by conn and returns it so the caller
// can evict the user from its room and broadcast the departure. Linear over
// active sessions; connection ids are unique by construction.
func (d *SessionDirectory) Unregister(conn contract.EventSink) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, s := range d.sessions {
		if s.Conn.ID() == conn.ID() {
			delete(d.sessions, key)
			d.log.Info("Session removed", "user_id", s.User.ID, "room_id", s.Room)
			return *s, true
		}
	}
	return Session{}, false
}

// SinkFor resolves the connection currently speaking for a user in a room.
func (d *SessionDirectory) SinkFor(userID string, roomID domain.RoomID) (contract.EventSink, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.sessions[sessionKey{userID: userID, roomID: roomID}]
	if !ok {
		return nil, false
	}
	return s.Conn, true
}

// AllSinks returns every distinct connection, for server-wide broadcasts.
// A connection serving several rooms is returned once.
func (d *SessionDirectory) AllSinks() []contract.EventSink {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{}, len(d.sessions))
	var sinks []contract.EventSink
	for _, s := range d.sessions {
		if _, ok := seen[s.Conn.ID()]; ok {
			continue
		}
		seen[s.Conn.ID()] = struct{}{}
		sinks = append(sinks, s.Conn)
	}
	return sinks
}

// Count reports how many sessions are active.
func (d *SessionDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
