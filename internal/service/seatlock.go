package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripgo/seat-reservation/internal/model"
)

// DefaultLockTTL is how long a seat lock stays valid when no explicit
// TTL is configured.  Fifteen minutes gives a payment flow enough
// time to complete without holding seats hostage for long.
const DefaultLockTTL = 15 * time.Minute

// LockGrant is the result of a successful LockSeats call.  The token
// identifies the whole group of locks for later release; ExpiresAt is
// shared by every seat in the group.
type LockGrant struct {
	Token     string
	ExpiresAt time.Time
	Seats     []string
}

// SeatLockManager grants and revokes short-lived exclusive holds on
// seats of a scheduled trip.  It owns the lifecycle of SeatLock rows;
// no other component writes them.  All mutual exclusion is delegated
// to the LockStore, which serializes by (schedule, seat) key only —
// never by schedule or table — so unrelated seats don't contend.
type SeatLockManager struct {
	store LockStore
	ttl   time.Duration
	now   Clock
}

// NewSeatLockManager constructs a manager around a lock store.  A
// non-positive ttl falls back to DefaultLockTTL; a nil clock falls
// back to time.Now.
func NewSeatLockManager(store LockStore, ttl time.Duration, now Clock) *SeatLockManager {
	if store == nil {
		panic("nil LockStore passed to NewSeatLockManager")
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SeatLockManager{store: store, ttl: ttl, now: now}
}

// TTL returns the configured lock duration.
func (m *SeatLockManager) TTL() time.Duration { return m.ttl }

// LockSeats places an exclusive hold on every requested seat of the
// schedule, all under one fresh token.  Seat numbers are trimmed and
// deduplicated first; an empty request fails with ErrNoSeatsRequested
// and a request carrying any blank entry fails with
// ErrBlankSeatNumber rather than locking a partial list.  The batch
// is all-or-nothing: if any seat is already actively locked the whole
// call fails with a *SeatUnavailableError naming the conflicting
// seats and no locks from this call survive.  When two callers race
// for the same seat, at most one wins; the loser never silently
// overwrites the winner.
func (m *SeatLockManager) LockSeats(ctx context.Context, scheduleID uint64, seatNumbers []string, userID uint64) (LockGrant, error) {
	seats, err := normalizeSeatNumbers(seatNumbers)
	if err != nil {
		return LockGrant{}, err
	}
	if len(seats) == 0 {
		return LockGrant{}, ErrNoSeatsRequested
	}

	now := m.now().UTC()
	token := uuid.NewString()
	// The expiry column stores whole seconds, so the grant is truncated
	// up front; callers always see exactly the timestamp the store
	// enforces.
	expiresAt := now.Add(m.ttl).Truncate(time.Second)

	locks := make([]model.SeatLock, 0, len(seats))
	for _, s := range seats {
		locks = append(locks, model.SeatLock{
			ScheduleID: scheduleID,
			SeatNumber: s,
			LockToken:  token,
			LockedBy:   userID,
			ExpiresAt:  expiresAt,
			CreatedAt:  now,
		})
	}

	conflicts, err := m.store.AcquireBatch(ctx, locks, now)
	if err != nil {
		return LockGrant{}, err
	}
	if len(conflicts) > 0 {
		return LockGrant{}, &SeatUnavailableError{ScheduleID: scheduleID, Seats: conflicts}
	}
	return LockGrant{Token: token, ExpiresAt: expiresAt, Seats: seats}, nil
}

// Release deletes every lock sharing the token.  It is idempotent:
// releasing an unknown or already-released token is a no-op, not an
// error.  It is called both when a booking completes and when a flow
// abandons its reservation.
func (m *SeatLockManager) Release(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	_, err := m.store.ReleaseByToken(ctx, token)
	return err
}

// CleanupExpired deletes every lock whose expiry has passed and
// returns how many were reclaimed.  Correctness never depends on this
// running: every read path already treats expired rows as absent.
func (m *SeatLockManager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now().UTC())
}

// ActiveLocks lists the live locks on a schedule, filtering expired
// rows against the injected clock rather than trusting the reaper.
func (m *SeatLockManager) ActiveLocks(ctx context.Context, scheduleID uint64) ([]model.SeatLock, error) {
	return m.store.ActiveBySchedule(ctx, scheduleID, m.now().UTC())
}

// normalizeSeatNumbers trims surrounding whitespace and collapses
// duplicates while keeping first-seen order so one call processes its
// seats deterministically.  An entry that is blank after trimming
// fails the whole request: a blank seat number is always a caller
// bug, and silently dropping it would lock fewer seats than asked.
func normalizeSeatNumbers(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, ErrBlankSeatNumber
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
