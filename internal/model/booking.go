package model

// BookingSeat is one confirmed, paid-for seat on a sub-span of a trip.
// Rows are created by the booking finalization flow, which this
// service does not own; they are read here as the ground truth for
// availability.  Two BookingSeats on the same schedule and seat number
// never have overlapping [FromStop, ToStop) spans.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – parent booking.
//  ScheduleID – trip on which the seat is sold.
//  SeatNumber – seat that was sold.
//  FromStop   – stop where the passenger boards.
//  ToStop     – stop where the passenger alights.
type BookingSeat struct {
	ID         uint64 // booking_seats.id
	BookingID  uint64 // booking_seats.booking_id
	ScheduleID uint64 // booking_seats.schedule_id
	SeatNumber string // booking_seats.seat_number
	FromStop   string // booking_seats.from_stop
	ToStop     string // booking_seats.to_stop
}
