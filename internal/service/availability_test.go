package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tripgo/seat-reservation/internal/model"
	"github.com/tripgo/seat-reservation/internal/repository"
)

// Static fixture sources for engine tests.  Each implements one of
// the read-only source interfaces over in-memory data.

type staticSegments []model.RouteSegment

func (s staticSegments) ListByRoute(context.Context, uint64) ([]model.RouteSegment, error) {
	return s, nil
}

type staticFares map[string]model.Fare // keyed by "segmentID/seatClass"

func fareKey(segmentID uint64, seatClass string) string {
	return fmt.Sprintf("%d/%s", segmentID, seatClass)
}

func (s staticFares) GetBySegmentAndClass(_ context.Context, segmentID uint64, seatClass string) (model.Fare, error) {
	f, ok := s[fareKey(segmentID, seatClass)]
	if !ok {
		return model.Fare{}, repository.ErrFareNotFound
	}
	return f, nil
}

type staticSeats []model.Seat

func (s staticSeats) ListByBus(context.Context, uint64) ([]model.Seat, error) { return s, nil }

type staticBookings []model.BookingSeat

func (s staticBookings) ListBySchedule(context.Context, uint64) ([]model.BookingSeat, error) {
	return s, nil
}

// testRoute builds the reference route A→B→C→D with one fare row per
// segment: base 100, GST 5% for class SLEEPER.
func testRoute() (staticSegments, staticFares) {
	segments := staticSegments{
		{ID: 1, RouteID: 1, Seq: 1, FromStop: "A", ToStop: "B"},
		{ID: 2, RouteID: 1, Seq: 2, FromStop: "B", ToStop: "C"},
		{ID: 3, RouteID: 1, Seq: 3, FromStop: "C", ToStop: "D"},
	}
	fares := staticFares{}
	for _, seg := range segments {
		fares[fareKey(seg.ID, "SLEEPER")] = model.Fare{
			ID:             seg.ID,
			RouteSegmentID: seg.ID,
			SeatClass:      "SLEEPER",
			BaseFare:       decimal.RequireFromString("100"),
			GSTPercent:     decimal.RequireFromString("5"),
		}
	}
	return segments, fares
}

func testEngine(segments staticSegments, fares staticFares, seats staticSeats, bookings staticBookings) *AvailabilityEngine {
	if seats == nil {
		seats = staticSeats{{ID: 1, BusID: 1, SeatNumber: "L1", SeatClass: "SLEEPER"}}
	}
	return NewAvailabilityEngine(segments, fares, seats, bookings)
}

var testSchedule = model.Schedule{ID: 1, RouteID: 1, BusID: 1, IsActive: true}

func TestSearchFareSumsExactlyTheCoveredSegments(t *testing.T) {
	t.Parallel()
	segments, fares := testRoute()
	engine := testEngine(segments, fares, nil, nil)

	// B→D covers segments B→C and C→D: (100+5) + (100+5) = 210.
	result, err := engine.Search(context.Background(), testSchedule, "B", "D", "SLEEPER")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := decimal.RequireFromString("200"); !result.Fare.Base.Equal(want) {
		t.Errorf("Base = %s, want %s", result.Fare.Base, want)
	}
	if want := decimal.RequireFromString("10"); !result.Fare.GST.Equal(want) {
		t.Errorf("GST = %s, want %s", result.Fare.GST, want)
	}
	if want := decimal.RequireFromString("210"); !result.Fare.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", result.Fare.Total, want)
	}
}

func TestSearchFareIsExactUnderRepeatedSummation(t *testing.T) {
	t.Parallel()
	segments := staticSegments{
		{ID: 1, RouteID: 1, Seq: 1, FromStop: "A", ToStop: "B"},
		{ID: 2, RouteID: 1, Seq: 2, FromStop: "B", ToStop: "C"},
		{ID: 3, RouteID: 1, Seq: 3, FromStop: "C", ToStop: "D"},
	}
	fares := staticFares{}
	for _, seg := range segments {
		// 0.1 + 0.2-style values that drift under float64 summation.
		fares[fareKey(seg.ID, "SEATER")] = model.Fare{
			RouteSegmentID: seg.ID,
			SeatClass:      "SEATER",
			BaseFare:       decimal.RequireFromString("33.33"),
			GSTPercent:     decimal.RequireFromString("18"),
		}
	}
	engine := testEngine(segments, fares, nil, nil)

	result, err := engine.Search(context.Background(), testSchedule, "A", "D", "SEATER")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Per segment: base 33.33, gst 5.9994; three segments exactly.
	if want := decimal.RequireFromString("99.99"); !result.Fare.Base.Equal(want) {
		t.Errorf("Base = %s, want %s", result.Fare.Base, want)
	}
	if want := decimal.RequireFromString("17.9982"); !result.Fare.GST.Equal(want) {
		t.Errorf("GST = %s, want %s", result.Fare.GST, want)
	}
	if want := decimal.RequireFromString("117.9882"); !result.Fare.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", result.Fare.Total, want)
	}
}

func TestSearchStopResolution(t *testing.T) {
	t.Parallel()
	segments, fares := testRoute()

	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{name: "full route", from: "A", to: "D"},
		{name: "middle span", from: "B", to: "C"},
		{name: "terminal stop resolves via final segment", from: "C", to: "D"},
		{name: "case-insensitive", from: "b", to: "d"},
		{name: "surrounding whitespace", from: "  B ", to: " D\t"},
		{name: "origin equals destination", from: "B", to: "B", wantErr: true},
		{name: "destination before origin", from: "C", to: "A", wantErr: true},
		{name: "unknown origin", from: "X", to: "C", wantErr: true},
		{name: "unknown destination", from: "A", to: "X", wantErr: true},
		{name: "blank origin", from: "  ", to: "C", wantErr: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			engine := testEngine(segments, fares, nil, nil)
			_, err := engine.Search(context.Background(), testSchedule, test.from, test.to, "SLEEPER")
			if test.wantErr {
				if !errors.Is(err, ErrInvalidStopSelection) {
					t.Errorf("err = %v, want ErrInvalidStopSelection", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Search: %v", err)
			}
		})
	}
}

func TestSearchFareNotDefined(t *testing.T) {
	t.Parallel()
	segments, fares := testRoute()
	delete(fares, fareKey(2, "SLEEPER")) // remove the fare of B→C

	engine := testEngine(segments, fares, nil, nil)
	_, err := engine.Search(context.Background(), testSchedule, "A", "D", "SLEEPER")

	var fareGap *FareNotDefinedError
	if !errors.As(err, &fareGap) {
		t.Fatalf("err = %v, want *FareNotDefinedError", err)
	}
	if fareGap.SegmentID != 2 || fareGap.FromStop != "B" || fareGap.ToStop != "C" {
		t.Errorf("error names segment %d (%s -> %s), want 2 (B -> C)",
			fareGap.SegmentID, fareGap.FromStop, fareGap.ToStop)
	}
	if fareGap.SeatClass != "SLEEPER" {
		t.Errorf("SeatClass = %q, want SLEEPER", fareGap.SeatClass)
	}
}

func TestSearchOverlapAvailability(t *testing.T) {
	t.Parallel()
	segments, fares := testRoute()
	seats := staticSeats{
		{ID: 1, BusID: 1, SeatNumber: "L1", SeatClass: "SLEEPER"},
		{ID: 2, BusID: 1, SeatNumber: "L2", SeatClass: "SLEEPER"},
	}
	// L1 is sold for A→C; L2 is unsold.
	bookings := staticBookings{
		{ID: 1, BookingID: 1, ScheduleID: 1, SeatNumber: "L1", FromStop: "A", ToStop: "C"},
	}

	tests := []struct {
		name   string
		from   string
		to     string
		wantL1 bool
	}{
		{name: "identical span", from: "A", to: "C", wantL1: false},
		{name: "overlapping prefix", from: "A", to: "B", wantL1: false},
		{name: "overlapping suffix", from: "B", to: "D", wantL1: false},
		{name: "containing span", from: "A", to: "D", wantL1: false},
		{name: "disjoint trailing leg", from: "C", to: "D", wantL1: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			engine := testEngine(segments, fares, seats, bookings)
			result, err := engine.Search(context.Background(), testSchedule, test.from, test.to, "SLEEPER")
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			got := map[string]bool{}
			for _, s := range result.Seats {
				got[s.SeatNumber] = s.Available
			}
			if got["L1"] != test.wantL1 {
				t.Errorf("L1 available = %v, want %v", got["L1"], test.wantL1)
			}
			if !got["L2"] {
				t.Error("unsold seat L2 reported unavailable")
			}
		})
	}
}

func TestSearchSharedSeatAcrossDisjointLegs(t *testing.T) {
	t.Parallel()
	segments, fares := testRoute()
	seats := staticSeats{{ID: 1, BusID: 1, SeatNumber: "L1", SeatClass: "SLEEPER"}}
	// Two passengers already share L1 on disjoint legs A→B and B→C.
	bookings := staticBookings{
		{ID: 1, BookingID: 1, ScheduleID: 1, SeatNumber: "L1", FromStop: "A", ToStop: "B"},
		{ID: 2, BookingID: 2, ScheduleID: 1, SeatNumber: "L1", FromStop: "B", ToStop: "C"},
	}
	engine := testEngine(segments, fares, seats, bookings)

	// The remaining leg C→D is still sellable on the same seat.
	result, err := engine.Search(context.Background(), testSchedule, "C", "D", "SLEEPER")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Seats) != 1 || !result.Seats[0].Available {
		t.Errorf("seats = %+v, want L1 available for the free leg", result.Seats)
	}
}
