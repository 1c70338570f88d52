// Package service implements the booking-critical core: exclusive
// seat locking with TTL expiry, periodic lock reclamation, and
// segment-aware fare and availability computation.  Error values
// defined here let the HTTP layer distinguish caller mistakes
// (invalid stop selection), recoverable contention (seat already
// locked) and administrative data gaps (missing fare rows) without
// string matching.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStopSelection is returned when an origin or destination
// stop cannot be resolved on the route, or when the destination does
// not come strictly after the origin in sequence order.  Handlers
// should translate this into an HTTP 400 response; the request is not
// retryable without corrected input.
var ErrInvalidStopSelection = errors.New("invalid stop selection")

// ErrNoSeatsRequested is returned by LockSeats when the request
// contains no seat numbers at all.
var ErrNoSeatsRequested = errors.New("no seats requested")

// ErrBlankSeatNumber is returned by LockSeats when any requested seat
// number is empty after trimming.  The whole request is rejected; a
// blank entry is never silently dropped.
var ErrBlankSeatNumber = errors.New("blank seat number")

// SeatUnavailableError reports that one or more requested seats are
// already actively locked by another holder.  The whole batch is
// rejected; no seats from the failing request are left locked.  The
// condition is recoverable: the caller should re-query availability
// and retry with different seats.
type SeatUnavailableError struct {
	ScheduleID uint64
	Seats      []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable on schedule %d: %s",
		e.ScheduleID, strings.Join(e.Seats, ", "))
}

// FareNotDefinedError reports that a segment/seat-class combination
// has no fare row.  This is an administrative configuration gap, not
// a transient failure; it is never silently treated as a zero fare.
type FareNotDefinedError struct {
	SegmentID uint64
	FromStop  string
	ToStop    string
	SeatClass string
}

func (e *FareNotDefinedError) Error() string {
	return fmt.Sprintf("no fare defined for segment %d (%s -> %s) class %s",
		e.SegmentID, e.FromStop, e.ToStop, e.SeatClass)
}
