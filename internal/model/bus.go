package model

import "time"

// Bus describes a physical vehicle.  The seat layout is generated once
// when the bus is registered and stays fixed for the life of the bus.
//
// Fields:
//  ID          – primary key identifier.
//  OperatorID  – operator that owns the bus.
//  RegNumber   – registration plate, unique across operators.
//  BusType     – layout type (e.g. SLEEPER_2X1, SEATER_2X2).
//  TotalSeats  – number of seats generated for the layout.
//  IsActive    – whether the bus can be scheduled.
//  CreatedAt   – creation timestamp.
type Bus struct {
	ID         uint64    // buses.id
	OperatorID uint64    // buses.operator_id
	RegNumber  string    // buses.reg_number
	BusType    string    // buses.bus_type
	TotalSeats uint32    // buses.total_seats
	IsActive   bool      // buses.is_active
	CreatedAt  time.Time // buses.created_at
}

// Seat is one physical seat on a bus.  Seat numbers are unique within
// a bus (e.g. "L1", "U3").  Seats are created at layout-generation time
// and are read-only for this service.
//
// Fields:
//  ID         – primary key identifier.
//  BusID      – bus to which this seat belongs.
//  SeatNumber – label of the seat, unique per bus.
//  SeatClass  – fare class of the seat (SLEEPER, SEATER, ...).
type Seat struct {
	ID         uint64 // seats.id
	BusID      uint64 // seats.bus_id
	SeatNumber string // seats.seat_number
	SeatClass  string // seats.seat_class
}
