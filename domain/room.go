// Package domain contains core concepts of the conquest game.
// This file defines Room and Cell entities and their invariants.
// No runtime, network, or UI logic should be added here.
package domain

// TurnsNotStarted is the turnsLeft sentinel for a room whose grid is not
// fully occupied yet.
const TurnsNotStarted = -1

type RoomID string

// Cell is one grid position, the unit of contest.
// Once Occupied is true, OwnerID, Team and Cost are always set together.
// CombatCount only ever increases.
type Cell struct {
	ID          int    `json:"id"`
	OwnerID     string `json:"ownerId,omitempty"`
	Team        string `json:"team,omitempty"`
	Cost        int    `json:"cost"`
	CombatCount int    `json:"combatCount"`
	Occupied    bool   `json:"occupied"`
}

// Room is an isolated grid-based game instance.
// Invariant: len(Cells) == Width*Height for the lifetime of the room.
// Cells, Value, TurnsLeft and Completed are only written by the tick engine.
type Room struct {
	ID        RoomID
	Width     int
	Height    int
	Cells     []Cell
	Users     []string
	Value     int
	Completed bool
	TurnsLeft int
}

func NewRoom(id RoomID, width, height int) *Room {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i].ID = i
	}
	return &Room{
		ID:        id,
		Width:     width,
		Height:    height,
		Cells:     cells,
		TurnsLeft: TurnsNotStarted,
	}
}

// HasCell reports whether cellID addresses a cell of this room.
func (r *Room) HasCell(cellID int) bool {
	return cellID >= 0 && cellID < len(r.Cells)
}

// ApplyClaim overwrites the target cell with the winning bid and adds the
// paid cost to the room value. The combat count carries over from the
// previous occupant. The caller must have resolved the auction already;
// ApplyClaim does not arbitrate.
func (r *Room) ApplyClaim(cellID int, ownerID, team string, cost int) Cell {
	cell := Cell{
		ID:          cellID,
		OwnerID:     ownerID,
		Team:        team,
		Cost:        cost,
		CombatCount: r.Cells[cellID].CombatCount + 1,
		Occupied:    true,
	}
	r.Cells[cellID] = cell
	r.Value += cost
	return cell
}

// AllOccupied reports whether every cell of the grid has an owner.
func (r *Room) AllOccupied() bool {
	for i := range r.Cells {
		if !r.Cells[i].Occupied {
			return false
		}
	}
	return true
}

// Enter adds userID to the member set and reports whether the membership
// changed. A duplicate join is a no-op.
func (r *Room) Enter(userID string) bool {
	for _, id := range r.Users {
		if id == userID {
			return false
		}
	}
	r.Users = append(r.Users, userID)
	return true
}

// Exit removes userID from the member set, reporting whether it was present.
func (r *Room) Exit(userID string) bool {
	for i, id := range r.Users {
		if id == userID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot is an independent copy of a room, safe to hand to
// connection-handling code and to marshal onto the wire while the engine
// keeps mutating the live room.
type Snapshot struct {
	ID        RoomID   `json:"id"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Cells     []Cell   `json:"cells"`
	Users     []string `json:"users"`
	Value     int      `json:"value"`
	Completed bool     `json:"isCompleted"`
	TurnsLeft int      `json:"turnsLeft"`
}

func (r *Room) Snapshot() Snapshot {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	users := make([]string, len(r.Users))
	copy(users, r.Users)
	return Snapshot{
		ID:        r.ID,
		Width:     r.Width,
		Height:    r.Height,
		Cells:     cells,
		Users:     users,
		Value:     r.Value,
		Completed: r.Completed,
		TurnsLeft: r.TurnsLeft,
	}
}
