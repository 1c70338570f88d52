package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tripgo/seat-reservation/internal/model"
	"github.com/tripgo/seat-reservation/internal/repository"
)

// FareResult is the aggregate price of a travel span.  GST is summed
// per segment before aggregation, matching the additive fare model:
// the price of a multi-segment span is exactly the sum of its per-leg
// prices, never a flat (origin, destination) lookup.
type FareResult struct {
	Base  decimal.Decimal `json:"base"`
	GST   decimal.Decimal `json:"gst"`
	Total decimal.Decimal `json:"total"`
}

// SeatAvailability reports whether one physical seat is free for the
// requested span.
type SeatAvailability struct {
	SeatNumber string `json:"seat_number"`
	Available  bool   `json:"available"`
}

// SearchResult bundles the fare of a span with the per-seat
// availability of the trip.
type SearchResult struct {
	Fare  FareResult         `json:"fare"`
	Seats []SeatAvailability `json:"seats"`
}

// AvailabilityEngine computes fares and seat availability for a
// partial span of a multi-stop trip.  It only reads: segments, fares,
// seat inventory and confirmed bookings.  It takes no locks and the
// answer may be stale the instant it returns; callers must re-validate
// at lock time, since lock acquisition is the authoritative gate.
type AvailabilityEngine struct {
	segments SegmentSource
	fares    FareSource
	seats    SeatSource
	bookings BookingSource
}

// NewAvailabilityEngine constructs an engine over the four read-only
// sources.  All dependencies must be non-nil.
func NewAvailabilityEngine(segments SegmentSource, fares FareSource, seats SeatSource, bookings BookingSource) *AvailabilityEngine {
	if segments == nil || fares == nil || seats == nil || bookings == nil {
		panic("nil source passed to NewAvailabilityEngine")
	}
	return &AvailabilityEngine{segments: segments, fares: fares, seats: seats, bookings: bookings}
}

// Search resolves the requested span on the schedule's route, sums
// the fare of the covered segments for the seat class, and reports
// which physical seats are free for that span.  A seat is occupied
// only when a confirmed booking on it overlaps the span; two
// passengers can therefore share one physical seat across disjoint
// legs of the trip.  Active seat locks are not consulted here — they
// are a soft layer the booking flow applies separately.
func (e *AvailabilityEngine) Search(ctx context.Context, schedule model.Schedule, fromStop, toStop, seatClass string) (SearchResult, error) {
	segments, err := e.segments.ListByRoute(ctx, schedule.RouteID)
	if err != nil {
		return SearchResult{}, err
	}

	startIdx, endIdx, err := resolveSpan(segments, fromStop, toStop)
	if err != nil {
		return SearchResult{}, err
	}

	fare, err := e.sumFares(ctx, segments[startIdx:endIdx], seatClass)
	if err != nil {
		return SearchResult{}, err
	}

	seats, err := e.seats.ListByBus(ctx, schedule.BusID)
	if err != nil {
		return SearchResult{}, err
	}
	booked, err := e.bookings.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return SearchResult{}, err
	}

	availability := make([]SeatAvailability, 0, len(seats))
	for _, seat := range seats {
		available := true
		for _, b := range booked {
			if b.SeatNumber != seat.SeatNumber {
				continue
			}
			bStart, bEnd, err := resolveSpan(segments, b.FromStop, b.ToStop)
			if err != nil {
				// A booking whose stops no longer resolve on the
				// route cannot be placed on the interval axis; it is
				// skipped rather than blocking the whole seat.
				continue
			}
			// Half-open interval intersection: [startIdx, endIdx)
			// overlaps [bStart, bEnd) iff each starts before the
			// other ends.
			if startIdx < bEnd && bStart < endIdx {
				available = false
				break
			}
		}
		availability = append(availability, SeatAvailability{
			SeatNumber: seat.SeatNumber,
			Available:  available,
		})
	}

	return SearchResult{Fare: fare, Seats: availability}, nil
}

// sumFares adds up base fare and GST for every covered segment.  GST
// is computed per segment before summation.  Decimal arithmetic keeps
// repeated summation exact.
func (e *AvailabilityEngine) sumFares(ctx context.Context, covered []model.RouteSegment, seatClass string) (FareResult, error) {
	base := decimal.Zero
	gst := decimal.Zero
	for _, seg := range covered {
		fare, err := e.fares.GetBySegmentAndClass(ctx, seg.ID, seatClass)
		if err != nil {
			if errors.Is(err, repository.ErrFareNotFound) {
				return FareResult{}, &FareNotDefinedError{
					SegmentID: seg.ID,
					FromStop:  seg.FromStop,
					ToStop:    seg.ToStop,
					SeatClass: seatClass,
				}
			}
			return FareResult{}, err
		}
		base = base.Add(fare.BaseFare)
		gst = gst.Add(fare.GST())
	}
	return FareResult{Base: base, GST: gst, Total: base.Add(gst)}, nil
}

// resolveSpan maps an (origin, destination) stop pair onto the
// half-open segment index interval [start, end).  The origin must be
// some segment's FromStop.  The destination resolves first as a
// segment's FromStop (that index is the exclusive end); when it is no
// segment's FromStop — which happens exactly for the final stop of
// the route — it falls back to matching a segment's ToStop and uses
// that index plus one.  Matching is case-insensitive and tolerates
// surrounding whitespace.  The destination must come strictly after
// the origin.
func resolveSpan(segments []model.RouteSegment, fromStop, toStop string) (start, end int, err error) {
	from := strings.TrimSpace(fromStop)
	to := strings.TrimSpace(toStop)
	if from == "" || to == "" {
		return 0, 0, ErrInvalidStopSelection
	}

	start = -1
	end = -1
	for i, seg := range segments {
		if start == -1 && strings.EqualFold(seg.FromStop, from) {
			start = i
		}
		if end == -1 && strings.EqualFold(seg.FromStop, to) {
			end = i
		}
	}
	if end == -1 {
		for i, seg := range segments {
			if strings.EqualFold(seg.ToStop, to) {
				end = i + 1
				break
			}
		}
	}
	if start == -1 || end == -1 || end <= start {
		return 0, 0, ErrInvalidStopSelection
	}
	return start, end, nil
}
