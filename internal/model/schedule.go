package model

import "time"

// Schedule is one departure of a bus on a route.  Seat locks and
// bookings are always scoped to a schedule, never to a bare route,
// because the same physical seat exists independently on every trip.
//
// Fields:
//  ID            – primary key identifier.
//  RouteID       – route being driven.
//  BusID         – bus assigned to the trip.
//  DepartureTime – departure from the route's first stop.
//  ArrivalTime   – arrival at the route's last stop.
//  IsActive      – whether the trip is open for booking.
type Schedule struct {
	ID            uint64    // route_schedules.id
	RouteID       uint64    // route_schedules.route_id
	BusID         uint64    // route_schedules.bus_id
	DepartureTime time.Time // route_schedules.departure_time
	ArrivalTime   time.Time // route_schedules.arrival_time
	IsActive      bool      // route_schedules.is_active
}
