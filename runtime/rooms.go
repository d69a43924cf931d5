package runtime

import (
	"conquest/domain"
	"fmt"
	"log/slog"
	"sync"
)

// RoomRegistry owns every Room entity. Rooms are created lazily on first
// join and only removed by an explicit administrative call.
//
// Connection-handling code never touches a *domain.Room directly: reads go
// through snapshots and membership changes through Enter/Exit, all under
// the registry lock. The tick engine mutates cells and countdown state
// through Update/ForEach, which hold the same lock for the duration of the
// callback.
type RoomRegistry struct {
	mu    sync.RWMutex
	log   *slog.Logger
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomRegistry(log *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		log:   log,
		rooms: make(map[domain.RoomID]*domain.Room),
	}
}

// GetOrCreate returns the existing room or allocates a new one with
// width*height unoccupied cells. Dimensions are fixed at creation: calling
// again with different dimensions returns the existing room unchanged.
func (r *RoomRegistry) GetOrCreate(id domain.RoomID, width, height int) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[id]; ok {
		return room.Snapshot()
	}

	room := domain.NewRoom(id, width, height)
	r.rooms[id] = room
	r.log.Info("Room created", "room_id", id, "width", width, "height", height)
	return room.Snapshot()
}

// Find returns a snapshot of the room, or false if it doesn't exist.
func (r *RoomRegistry) Find(id domain.RoomID) (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Snapshot{}, false
	}
	return room.Snapshot(), true
}

// Remove deletes the room entirely. Callers broadcast separately if they
// want members to hear about it.
func (r *RoomRegistry) Remove(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	r.log.Info("Room removed", "room_id", id)
	return true
}

// Enter adds userID to the room's member set. A duplicate join is a no-op.
func (r *RoomRegistry) Enter(id domain.RoomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		r.log.Warn("Enter on unknown room", "room_id", id, "user_id", userID)
		return
	}
	if !room.Enter(userID) {
		r.log.Info(fmt.Sprintf("User %s already in room %s", userID, id))
	}
}

// Exit removes userID from the room's member set. Missing room or missing
// membership is a diagnostic, not an error.
func (r *RoomRegistry) Exit(id domain.RoomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		r.log.Warn("Exit on unknown room", "room_id", id, "user_id", userID)
		return
	}
	if !room.Exit(userID) {
		r.log.Warn("Exit for user not in room", "room_id", id, "user_id", userID)
	}
}

// Update runs fn against the live room under the write lock. Reports false
// when the room doesn't exist. The engine is the only caller mutating
// cells, value or countdown state through here.
func (r *RoomRegistry) Update(id domain.RoomID, fn func(*domain.Room)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	fn(room)
	return true
}

// ForEach runs fn against every live room under the write lock.
func (r *RoomRegistry) ForEach(fn func(*domain.Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		fn(room)
	}
}

// Members returns the current member set of a room. The auction only needs
// this for fan-out, so a membership that changed moments earlier is fine.
func (r *RoomRegistry) Members(id domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil
	}
	members := make([]string, len(room.Users))
	copy(members, room.Users)
	return members
}

// Snapshots returns a copy of every room, for the debug endpoints.
func (r *RoomRegistry) Snapshots() []domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]domain.Snapshot, 0, len(r.rooms))
	for _, room := range r.rooms {
		snapshots = append(snapshots, room.Snapshot())
	}
	return snapshots
}

// Count reports how many rooms exist.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
