package model

import "time"

// SeatLock represents a temporary exclusive hold on one seat of one
// scheduled trip while a payment flow completes.  All locks created by
// a single request share one LockToken so they can be released
// together.  The storage layer enforces that at most one row exists
// per (ScheduleID, SeatNumber); a row whose ExpiresAt is not in the
// future is logically dead and must be ignored by every reader even
// before the reaper deletes it.
//
// Fields:
//  ID         – primary key identifier.
//  ScheduleID – trip on which the seat is held.
//  SeatNumber – seat being held.
//  LockToken  – opaque token grouping all seats locked in one request.
//  LockedBy   – identity of the requesting user.
//  ExpiresAt  – absolute expiry timestamp of the hold.
//  CreatedAt  – when the hold was created.
type SeatLock struct {
	ID         uint64    // seat_locks.id
	ScheduleID uint64    // seat_locks.schedule_id
	SeatNumber string    // seat_locks.seat_number
	LockToken  string    // seat_locks.lock_token
	LockedBy   uint64    // seat_locks.locked_by_user_id
	ExpiresAt  time.Time // seat_locks.expires_at
	CreatedAt  time.Time // seat_locks.created_at
}

// Active reports whether the lock is still alive at the given instant.
// ExpiresAt exactly equal to now counts as expired.
func (l SeatLock) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
