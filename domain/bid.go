package domain

// ConquestBid is a submitted claim on a cell. Bids are ephemeral: they only
// live inside the pending buffer between submission and the tick that
// drains them, and are never persisted.
//
// Seq is the submission sequence number assigned by the buffer at enqueue
// time. It is the final tie-break of the auction sort: when two bids name
// the same cell with the same cost, the earlier accepted bid wins.
type ConquestBid struct {
	Seq    uint64
	UserID string
	Room   RoomID
	CellID int
	Team   string
	Cost   int
}
