package runtime

import (
	"conquest/domain"
	"conquest/domain/event"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testLeftTurn = 5

func newTestEngine(t *testing.T) (*TickEngine, *RoomRegistry, *BidBuffer, *recordingNotifier) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	rooms := NewRoomRegistry(log)
	buffer := NewBidBuffer()
	notifier := &recordingNotifier{}
	engine := NewTickEngine(log, time.Second, testLeftTurn, buffer, rooms, notifier)
	return engine, rooms, buffer, notifier
}

// Scenario A: two bids on the same cell in one tick, highest cost wins.
func TestTickEngine_HighestCostWinsTheCell(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, notifier := newTestEngine(t)
	rooms.GetOrCreate("r1", 2, 2)

	u1 := &stubSink{id: "conn-u1"}
	u2 := &stubSink{id: "conn-u2"}

	// Given u1 bids 10 and u2 bids 30 on cell 0 before the tick
	buffer.Enqueue(domain.ConquestBid{UserID: "u1", Room: "r1", CellID: 0, Team: "red", Cost: 10}, u1)
	buffer.Enqueue(domain.ConquestBid{UserID: "u2", Room: "r1", CellID: 0, Team: "blue", Cost: 30}, u2)

	// When the tick fires
	engine.Tick()

	// Then u2 owns cell 0 and the room value is the winning cost
	snap, ok := rooms.Find("r1")
	req.True(ok)
	req.Equal("u2", snap.Cells[0].OwnerID)
	req.Equal("blue", snap.Cells[0].Team)
	req.Equal(30, snap.Cells[0].Cost)
	req.Equal(1, snap.Cells[0].CombatCount)
	req.Equal(30, snap.Value)

	// And u2 hears success, u1 hears failure
	u2Events := notifier.unicastsTo("conn-u2")
	req.Len(u2Events, 1)
	req.Equal(event.ConquerCellSuccess, u2Events[0].Kind())

	u1Events := notifier.unicastsTo("conn-u1")
	req.Len(u1Events, 1)
	req.Equal(event.ConquerCellFailed, u1Events[0].Kind())

	// And the other room members got the cell update, the winner excluded
	req.Len(notifier.room, 1)
	req.Equal(event.UpdateCell, notifier.room[0].event.Kind())
	req.Equal("conn-u2", notifier.room[0].exceptID)
}

func TestTickEngine_WinnerIndependentOfSubmissionOrder(t *testing.T) {
	req := require.New(t)

	for name, order := range map[string][]int{
		"cheap first":     {10, 30},
		"expensive first": {30, 10},
	} {
		engine, rooms, buffer, _ := newTestEngine(t)
		rooms.GetOrCreate("r1", 2, 2)

		for _, cost := range order {
			user := "u-cheap"
			if cost == 30 {
				user = "u-rich"
			}
			buffer.Enqueue(domain.ConquestBid{UserID: user, Room: "r1", CellID: 0, Cost: cost}, &stubSink{id: user})
		}
		engine.Tick()

		snap, _ := rooms.Find("r1")
		req.Equal("u-rich", snap.Cells[0].OwnerID, name)
	}
}

// The tie-break is the submission sequence: earliest accepted bid wins.
func TestTickEngine_EqualCostTieGoesToEarliestBid(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, _ := newTestEngine(t)
	rooms.GetOrCreate("r1", 2, 2)

	buffer.Enqueue(domain.ConquestBid{UserID: "first", Room: "r1", CellID: 0, Cost: 25}, &stubSink{id: "c1"})
	buffer.Enqueue(domain.ConquestBid{UserID: "second", Room: "r1", CellID: 0, Cost: 25}, &stubSink{id: "c2"})

	engine.Tick()

	snap, _ := rooms.Find("r1")
	req.Equal("first", snap.Cells[0].OwnerID)
}

// Re-running the auction over the exact same batch yields the same state.
func TestTickEngine_ResolveIsDeterministic(t *testing.T) {
	req := require.New(t)

	batch := []PendingBid{
		{Bid: domain.ConquestBid{Seq: 1, UserID: "u1", Room: "r1", CellID: 0, Cost: 10}, Conn: &stubSink{id: "c1"}},
		{Bid: domain.ConquestBid{Seq: 2, UserID: "u2", Room: "r1", CellID: 0, Cost: 30}, Conn: &stubSink{id: "c2"}},
		{Bid: domain.ConquestBid{Seq: 3, UserID: "u3", Room: "r1", CellID: 1, Cost: 5}, Conn: &stubSink{id: "c3"}},
		{Bid: domain.ConquestBid{Seq: 4, UserID: "u4", Room: "r2", CellID: 0, Cost: 7}, Conn: &stubSink{id: "c4"}},
	}

	var snapshots []domain.Snapshot
	for run := 0; run < 2; run++ {
		engine, rooms, _, _ := newTestEngine(t)
		rooms.GetOrCreate("r1", 2, 2)
		rooms.GetOrCreate("r2", 2, 2)

		local := make([]PendingBid, len(batch))
		copy(local, batch)
		engine.Resolve(local)

		snap, _ := rooms.Find("r1")
		snapshots = append(snapshots, snap)
	}

	req.Equal(snapshots[0].Cells, snapshots[1].Cells)
	req.Equal(snapshots[0].Value, snapshots[1].Value)
}

func TestTickEngine_BidsForUnknownRoomAreDropped(t *testing.T) {
	req := require.New(t)
	engine, _, buffer, notifier := newTestEngine(t)

	buffer.Enqueue(domain.ConquestBid{UserID: "u1", Room: "ghost", CellID: 0, Cost: 10}, &stubSink{id: "c1"})

	engine.Tick()

	// No notification of any kind: the bid vanished quietly
	req.Empty(notifier.one)
	req.Empty(notifier.room)
}

func TestTickEngine_BidForCellOutsideGridIsDropped(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, notifier := newTestEngine(t)
	rooms.GetOrCreate("r1", 2, 2)

	buffer.Enqueue(domain.ConquestBid{UserID: "u1", Room: "r1", CellID: 99, Cost: 10}, &stubSink{id: "c1"})

	engine.Tick()

	snap, _ := rooms.Find("r1")
	req.Zero(snap.Value)
	req.Empty(notifier.one)
}

// Scenario B: the last free cell is claimed, the countdown starts.
func TestTickEngine_CountdownStartsWhenGridFills(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, notifier := newTestEngine(t)
	rooms.GetOrCreate("r1", 2, 2)

	// Given 3 of 4 cells already occupied
	rooms.Update("r1", func(room *domain.Room) {
		room.ApplyClaim(0, "u1", "red", 1)
		room.ApplyClaim(1, "u1", "red", 1)
		room.ApplyClaim(2, "u1", "red", 1)
	})

	// When the 4th cell is claimed this tick
	buffer.Enqueue(domain.ConquestBid{UserID: "u2", Room: "r1", CellID: 3, Team: "blue", Cost: 9}, &stubSink{id: "c2"})
	engine.Tick()

	// Then the countdown transitions from the sentinel to the full length
	snap, _ := rooms.Find("r1")
	req.Equal(testLeftTurn, snap.TurnsLeft)
	req.False(snap.Completed)

	// And the approaching-final event went to everyone
	req.Equal([]event.Kind{event.GotoFinal}, notifier.broadcastKinds())
}

func TestTickEngine_CountdownDecrementsEachTick(t *testing.T) {
	req := require.New(t)
	engine, rooms, _, notifier := newTestEngine(t)
	rooms.GetOrCreate("r1", 1, 1)
	rooms.Update("r1", func(room *domain.Room) {
		room.ApplyClaim(0, "u1", "red", 1)
	})

	engine.Tick() // countdown starts at testLeftTurn
	engine.Tick() // first decrement

	snap, _ := rooms.Find("r1")
	req.Equal(testLeftTurn-1, snap.TurnsLeft)
	req.Equal([]event.Kind{event.GotoFinal, event.GotoFinal}, notifier.broadcastKinds())
}

// Scenario C: the countdown reaches zero, the room completes for good.
func TestTickEngine_RoomCompletesWhenCountdownExpires(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, notifier := newTestEngine(t)
	rooms.GetOrCreate("r1", 1, 1)
	rooms.Update("r1", func(room *domain.Room) {
		room.ApplyClaim(0, "u1", "red", 1)
		room.TurnsLeft = 1
	})

	// When the tick decrements the last turn
	engine.Tick()

	// Then the room is terminal
	snap, _ := rooms.Find("r1")
	req.Zero(snap.TurnsLeft)
	req.True(snap.Completed)
	req.Equal([]event.Kind{event.GameOver}, notifier.broadcastKinds())

	// And a bid in the next tick is silently dropped: no mutation, no answer
	valueBefore := snap.Value
	buffer.Enqueue(domain.ConquestBid{UserID: "u2", Room: "r1", CellID: 0, Cost: 50}, &stubSink{id: "c2"})
	engine.Tick()

	snap, _ = rooms.Find("r1")
	req.Equal(valueBefore, snap.Value)
	req.True(snap.Completed)
	req.Empty(notifier.one)
	// No further lifecycle broadcast either: terminal rooms are skipped
	req.Equal([]event.Kind{event.GameOver}, notifier.broadcastKinds())
}

// turnsLeft only ever goes -1 -> LEFT_TURN -> 0 and completed never
// flips back.
func TestTickEngine_LifecycleMonotonicity(t *testing.T) {
	req := require.New(t)
	engine, rooms, _, _ := newTestEngine(t)
	rooms.GetOrCreate("r1", 1, 1)
	rooms.Update("r1", func(room *domain.Room) {
		room.ApplyClaim(0, "u1", "red", 1)
	})

	previous := domain.TurnsNotStarted
	for i := 0; i < testLeftTurn+3; i++ {
		engine.Tick()
		snap, _ := rooms.Find("r1")

		if previous == domain.TurnsNotStarted {
			req.Contains([]int{domain.TurnsNotStarted, testLeftTurn}, snap.TurnsLeft)
		} else {
			req.LessOrEqual(snap.TurnsLeft, previous)
		}
		if snap.Completed {
			req.Zero(snap.TurnsLeft)
		}
		previous = snap.TurnsLeft
	}

	snap, _ := rooms.Find("r1")
	req.True(snap.Completed)
}

// Two rooms in one batch: a failure processing one room must not prevent
// the other room's bids from resolving.
func TestTickEngine_RoomsAreResolvedIndependently(t *testing.T) {
	req := require.New(t)
	engine, rooms, buffer, _ := newTestEngine(t)
	rooms.GetOrCreate("a", 2, 2)
	rooms.GetOrCreate("b", 2, 2)

	buffer.Enqueue(domain.ConquestBid{UserID: "u1", Room: "a", CellID: 0, Cost: 10}, &stubSink{id: "c1"})
	buffer.Enqueue(domain.ConquestBid{UserID: "u2", Room: "ghost", CellID: 0, Cost: 10}, &stubSink{id: "c2"})
	buffer.Enqueue(domain.ConquestBid{UserID: "u3", Room: "b", CellID: 1, Cost: 10}, &stubSink{id: "c3"})

	engine.Tick()

	snapA, _ := rooms.Find("a")
	snapB, _ := rooms.Find("b")
	req.Equal("u1", snapA.Cells[0].OwnerID)
	req.Equal("u3", snapB.Cells[1].OwnerID)
}
