package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"conquest/domain/event"
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"
)

// Ensure *TickEngine implements the contract.Worker interface at compile time.
var _ contract.Worker = (*TickEngine)(nil)

// TickEngine resolves the pending bids into winners and losers on a fixed
// schedule and advances each room's countdown. It is the only writer of
// cells, room value and turnsLeft, which is what lets bid submission stay
// lock-free from the submitters' point of view: correctness comes from
// batching plus a deterministic sort, not from per-request locking.
type TickEngine struct {
	log      *slog.Logger
	interval time.Duration
	leftTurn int
	buffer   *BidBuffer
	rooms    *RoomRegistry
	notifier contract.INotifier
	ticks    atomic.Uint64
}

func NewTickEngine(log *slog.Logger, interval time.Duration, leftTurn int,
	buffer *BidBuffer, rooms *RoomRegistry, notifier contract.INotifier) *TickEngine {
	return &TickEngine{
		log:      log,
		interval: interval,
		leftTurn: leftTurn,
		buffer:   buffer,
		rooms:    rooms,
		notifier: notifier,
	}
}

func (e *TickEngine) Run(ctx context.Context) error {
	e.log.Info("Starting tick engine", "interval", e.interval, "left_turn", e.leftTurn)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Debug("Stopping tick engine")
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick runs one full engine invocation: drain the buffer accumulated since
// the previous tick, resolve the auction, then advance every room's
// lifecycle. Exported so tests can drive ticks without a timer.
func (e *TickEngine) Tick() {
	e.ticks.Add(1)
	batch := e.buffer.SwapAndDrain()
	if len(batch) > 0 {
		e.log.Debug("Resolving drained batch", "bids", len(batch))
	}
	e.Resolve(batch)
	e.advanceRooms()
}

// Ticks reports how many ticks have fired since start.
func (e *TickEngine) Ticks() uint64 {
	return e.ticks.Load()
}

// Resolve runs the per-cell auction over one drained batch.
//
// The sort is the core correctness mechanism: room ascending, cell
// ascending, cost descending, submission sequence ascending. It groups all
// bids for the same (room, cell) contiguously with the winning bid first,
// so a single linear pass settles everything. Re-running Resolve over the
// same batch always picks the same winners.
func (e *TickEngine) Resolve(batch []PendingBid) {
	sort.Slice(batch, func(i, j int) bool {
		a, b := batch[i].Bid, batch[j].Bid
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		if a.CellID != b.CellID {
			return a.CellID < b.CellID
		}
		if a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		return a.Seq < b.Seq
	})

	for start := 0; start < len(batch); {
		end := start
		roomID := batch[start].Bid.Room
		for end < len(batch) && batch[end].Bid.Room == roomID {
			end++
		}
		e.resolveRoom(roomID, batch[start:end])
		start = end
	}
}

type cellWin struct {
	conn      contract.EventSink
	userID    string
	cell      domain.Cell
	roomValue int
}

type cellLoss struct {
	conn   contract.EventSink
	userID string
	cell   domain.Cell
}

// resolveRoom settles the contiguous slice of bids targeting one room.
// A panic here is confined to this room: the other rooms of the batch and
// the following lifecycle pass still run.
func (e *TickEngine) resolveRoom(roomID domain.RoomID, bids []PendingBid) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Auction pass failed, room skipped this tick", "room_id", roomID, "panic", r)
		}
	}()

	var wins []cellWin
	var losses []cellLoss
	completed := false

	found := e.rooms.Update(roomID, func(room *domain.Room) {
		if room.Completed {
			completed = true
			return
		}
		winningCell := -1
		for _, pending := range bids {
			bid := pending.Bid
			if !room.HasCell(bid.CellID) {
				e.log.Warn("Bid for cell outside grid dropped", "room_id", roomID, "cell_id", bid.CellID, "user_id", bid.UserID)
				continue
			}
			if bid.CellID != winningCell {
				// First bid for this cell in the sorted batch: the winner.
				winningCell = bid.CellID
				cell := room.ApplyClaim(bid.CellID, bid.UserID, bid.Team, bid.Cost)
				wins = append(wins, cellWin{conn: pending.Conn, userID: bid.UserID, cell: cell, roomValue: room.Value})
			} else {
				losses = append(losses, cellLoss{conn: pending.Conn, userID: bid.UserID, cell: room.Cells[bid.CellID]})
			}
		}
	})

	if !found {
		e.log.Debug("Bids for unknown room dropped", "room_id", roomID, "bids", len(bids))
		return
	}
	if completed {
		// Terminal room: bids are swallowed without notification.
		e.log.Debug("Bids against completed room dropped", "room_id", roomID, "bids", len(bids))
		return
	}

	// Notifications happen outside the registry lock.
	for _, w := range wins {
		e.notifier.ToRoomExcept(roomID, w.conn, event.UpdateCellEvent{
			Room:      roomID,
			User:      w.userID,
			Cell:      w.cell,
			RoomValue: w.roomValue,
		})
		e.notifier.ToOne(w.conn, event.ConquerResultEvent{Room: roomID, User: w.userID, Cell: w.cell, Won: true})
	}
	for _, l := range losses {
		e.notifier.ToOne(l.conn, event.ConquerResultEvent{Room: roomID, User: l.userID, Cell: l.cell, Won: false})
	}
}

// advanceRooms evaluates the countdown state machine of every room once,
// after the auction pass. turnsLeft only moves from the -1 sentinel to the
// configured countdown, or downwards; completed only ever flips to true.
func (e *TickEngine) advanceRooms() {
	var broadcasts []event.LifecycleEvent

	e.rooms.ForEach(func(room *domain.Room) {
		if room.Completed {
			return
		}
		switch {
		case room.TurnsLeft == domain.TurnsNotStarted:
			if room.AllOccupied() {
				room.TurnsLeft = e.leftTurn
				broadcasts = append(broadcasts, event.LifecycleEvent{Room: room.Snapshot()})
			}
		case room.TurnsLeft > 0:
			room.TurnsLeft--
			if room.TurnsLeft == 0 {
				room.Completed = true
				broadcasts = append(broadcasts, event.LifecycleEvent{Room: room.Snapshot(), Over: true})
			} else {
				broadcasts = append(broadcasts, event.LifecycleEvent{Room: room.Snapshot()})
			}
		}
	})

	for _, b := range broadcasts {
		e.notifier.ToAll(b)
	}
}
