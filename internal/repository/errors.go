// Package repository provides raw-SQL data access for the booking
// core, plus an in-memory implementation of the lock store for
// storage-less runs and tests.  The sentinel values defined here
// allow higher layers such as handlers to distinguish between
// different failure scenarios with errors.Is instead of string
// matching.  For example, ErrScheduleNotFound indicates a dangling
// schedule reference supplied by the caller, while ErrFareNotFound
// signals an administrative data gap for a segment/seat-class pair.
package repository

import "errors"

// ErrScheduleNotFound is returned when the referenced route schedule
// does not exist.  Handlers should translate this into an HTTP 404
// response.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrRouteNotFound is returned when the referenced route does not
// exist or has no segments.  Handlers should translate this into an
// HTTP 404 response.
var ErrRouteNotFound = errors.New("route not found")

// ErrBusNotFound is returned when the referenced bus does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrBusNotFound = errors.New("bus not found")

// ErrFareNotFound is returned when no fare row exists for a
// segment/seat-class combination.  The availability engine wraps it
// into a typed error naming the segment; it is never silently treated
// as a zero fare.
var ErrFareNotFound = errors.New("fare not found")
