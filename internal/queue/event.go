// Package queue defines the seat event payloads exchanged over the
// message broker and the background consumer that records them.
package queue

// SeatEventQueue is the durable queue all seat lifecycle events are
// published to.
const SeatEventQueue = "seat.events"

// Event kinds carried in SeatEvent.Kind.
const (
	EventSeatLocked   = "seat.locked"
	EventSeatReleased = "seat.released"
)

// SeatEvent is published when seats are locked for a booking attempt
// or released again.  It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type SeatEvent struct {
	Kind        string   `json:"kind"`
	ScheduleID  uint64   `json:"schedule_id"`
	SeatNumbers []string `json:"seat_numbers,omitempty"`
	LockToken   string   `json:"lock_token"`
	UserID      uint64   `json:"user_id,omitempty"`
	ExpiresAt   string   `json:"expires_at,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}
