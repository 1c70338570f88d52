package service

import (
	"context"
	"time"

	"github.com/tripgo/seat-reservation/internal/model"
)

// Clock supplies the current time to the lock manager and the
// availability engine.  Injecting it keeps every expiry comparison
// testable with a frozen timestamp.  Production wiring passes
// time.Now.
type Clock func() time.Time

// SegmentSource resolves the ordered segment list of a route.  The
// returned slice must be sorted by ascending Seq.
type SegmentSource interface {
	ListByRoute(ctx context.Context, routeID uint64) ([]model.RouteSegment, error)
}

// FareSource looks up the fare row for one segment and seat class.
// A missing row is reported with repository.ErrFareNotFound so the
// engine can surface it as a FareNotDefinedError.
type FareSource interface {
	GetBySegmentAndClass(ctx context.Context, segmentID uint64, seatClass string) (model.Fare, error)
}

// SeatSource lists the fixed seat inventory of a bus.
type SeatSource interface {
	ListByBus(ctx context.Context, busID uint64) ([]model.Seat, error)
}

// BookingSource lists the confirmed seat spans sold on a schedule.
// Confirmed bookings are the ground truth for availability; active
// seat locks are a separate soft layer.
type BookingSource interface {
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.BookingSeat, error)
}

// LockStore is the persistence contract of the seat lock manager.
// Implementations must make AcquireBatch atomic per (schedule, seat)
// key: when two callers race for the same seat, exactly one insert
// wins and the loser sees the seat in the returned conflict list.
// The SQL implementation leans on a unique key over
// (schedule_id, seat_number); the in-memory implementation uses
// striped per-key mutexes.  Either way the insert, not the preceding
// read, is the authoritative conflict signal.
type LockStore interface {
	// AcquireBatch inserts every lock in the batch or none of them.
	// A row whose ExpiresAt is at or before now does not block
	// acquisition and may be overwritten.  When any requested seat is
	// actively held, AcquireBatch returns the conflicting seat
	// numbers and inserts nothing.
	AcquireBatch(ctx context.Context, locks []model.SeatLock, now time.Time) (conflicts []string, err error)

	// ReleaseByToken deletes every lock sharing the token and returns
	// the number of rows removed.  Unknown tokens delete zero rows
	// and are not an error.
	ReleaseByToken(ctx context.Context, token string) (int64, error)

	// DeleteExpired removes every lock with ExpiresAt at or before
	// now and returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// ActiveBySchedule lists the locks on a schedule that are still
	// alive at the given instant.
	ActiveBySchedule(ctx context.Context, scheduleID uint64, now time.Time) ([]model.SeatLock, error)
}
