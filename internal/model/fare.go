package model

import "github.com/shopspring/decimal"

// Fare holds the price of one route segment for one seat class.  There
// is exactly one fare row per (segment, seat class) pair.  Money is
// carried as decimals end to end; fares are summed across segments, so
// float arithmetic would accumulate rounding drift.
//
// Fields:
//  ID             – primary key identifier.
//  RouteSegmentID – segment being priced.
//  SeatClass      – seat class the price applies to (SLEEPER, SEATER, ...).
//  BaseFare       – pre-tax price of the leg.
//  GSTPercent     – tax percentage applied to BaseFare.
type Fare struct {
	ID             uint64          // fares.id
	RouteSegmentID uint64          // fares.route_segment_id
	SeatClass      string          // fares.seat_class
	BaseFare       decimal.Decimal // fares.base_fare
	GSTPercent     decimal.Decimal // fares.gst_percent
}

// Total returns the tax-inclusive price of the segment:
// BaseFare + BaseFare*GSTPercent/100.
func (f Fare) Total() decimal.Decimal {
	return f.BaseFare.Add(f.GST())
}

// GST returns the tax amount for the segment.
func (f Fare) GST() decimal.Decimal {
	return f.BaseFare.Mul(f.GSTPercent).Div(decimal.NewFromInt(100))
}
