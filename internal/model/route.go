package model

import "time"

// Route describes a named service between two terminal stops.  The
// intermediate stops are not stored here; they are derived from the
// ordered route_segments belonging to the route.
//
// Fields:
//  ID          – primary key identifier.
//  OperatorID  – operator that runs this route.
//  Name        – human readable route name (e.g. "Chennai Express").
//  Origin      – first stop of the route.
//  Destination – last stop of the route.
//  IsActive    – whether the route is bookable.
//  CreatedAt   – creation timestamp.
type Route struct {
	ID          uint64    // routes.id
	OperatorID  uint64    // routes.operator_id
	Name        string    // routes.name
	Origin      string    // routes.origin
	Destination string    // routes.destination
	IsActive    bool      // routes.is_active
	CreatedAt   time.Time // routes.created_at
}

// RouteSegment is one leg of a multi-stop route.  Segments of a route
// ordered by Seq form a chain: segment i runs FromStop → ToStop and
// positionally precedes segment i+1.  Seq values are strictly
// increasing and contiguous within a route.  Segments are created by
// route administration and are read-only for this service.
//
// Fields:
//  ID              – primary key identifier.
//  RouteID         – route to which this segment belongs.
//  Seq             – position of the segment within the route.
//  FromStop        – stop where this leg starts.
//  ToStop          – stop where this leg ends.
//  DistanceKm      – length of the leg in kilometres.
//  DurationMinutes – scheduled travel time of the leg.
type RouteSegment struct {
	ID              uint64  // route_segments.id
	RouteID         uint64  // route_segments.route_id
	Seq             uint32  // route_segments.seq
	FromStop        string  // route_segments.from_stop
	ToStop          string  // route_segments.to_stop
	DistanceKm      float64 // route_segments.distance_km
	DurationMinutes uint32  // route_segments.duration_minutes
}
