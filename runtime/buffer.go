// Package runtime owns the live game state and the machinery around it:
// the pending bid buffer, the session and room registries, the notifier
// and the tick engine. It orchestrates the system without containing
// transport or UI logic.
package runtime

import (
	"conquest/contract"
	"conquest/domain"
	"sync"
)

// PendingBid couples a bid with the connection that submitted it, so the
// engine can answer the right client at the next tick.
type PendingBid struct {
	Bid  domain.ConquestBid
	Conn contract.EventSink
}

// BidBuffer is the double-buffered queue of submitted conquest bids.
// Writers append to the active buffer; the engine flips the active index
// and drains the previous buffer once per tick.
//
// One mutex guards both the append and the swap, so a bid arriving during
// a swap lands in exactly one of the two buffers: either the drained batch
// or the newly active buffer. Never lost, never duplicated, never split.
type BidBuffer struct {
	mu      sync.Mutex
	buffers [2][]PendingBid
	active  int
	seq     uint64
}

func NewBidBuffer() *BidBuffer {
	return &BidBuffer{}
}

// Enqueue appends a bid to the active buffer and stamps it with the next
// submission sequence number, the auction's final tie-break. It never
// blocks beyond the buffer lock and always succeeds.
func (b *BidBuffer) Enqueue(bid domain.ConquestBid, conn contract.EventSink) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	bid.Seq = b.seq
	b.buffers[b.active] = append(b.buffers[b.active], PendingBid{Bid: bid, Conn: conn})
	return b.seq
}

// SwapAndDrain flips the active index so new bids land in the other buffer,
// then returns the full contents of the previously active buffer and clears
// it. The cleared buffer keeps no backing array, so a drained batch is
// never aliased by later enqueues.
func (b *BidBuffer) SwapAndDrain() []PendingBid {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.buffers[b.active]
	b.buffers[b.active] = nil
	b.active = 1 - b.active
	return drained
}

// Depth reports how many bids are currently waiting for the next tick.
func (b *BidBuffer) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers[b.active])
}
