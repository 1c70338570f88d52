package repository

import (
	"context"
	"database/sql"

	"github.com/tripgo/seat-reservation/internal/model"
)

// RouteSegmentRepo provides read access to the route_segments table.
// Segments are written by route administration, never by this
// service, so the repository exposes no mutation methods.
type RouteSegmentRepo struct {
	db *sql.DB
}

// NewRouteSegmentRepo returns a new RouteSegmentRepo bound to the
// provided database.
func NewRouteSegmentRepo(db *sql.DB) *RouteSegmentRepo { return &RouteSegmentRepo{db: db} }

// ListByRoute returns the segments of a route ordered by ascending
// seq.  The availability engine depends on this ordering to map stop
// names onto sequence positions.  An empty result means the route is
// unknown or has no legs and is reported as ErrRouteNotFound.
func (r *RouteSegmentRepo) ListByRoute(ctx context.Context, routeID uint64) ([]model.RouteSegment, error) {
	const q = `SELECT id, route_id, seq, from_stop, to_stop, distance_km, duration_minutes
               FROM route_segments
               WHERE route_id = ?
               ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var segments []model.RouteSegment
	for rows.Next() {
		var s model.RouteSegment
		if err := rows.Scan(&s.ID, &s.RouteID, &s.Seq, &s.FromStop, &s.ToStop, &s.DistanceKm, &s.DurationMinutes); err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrRouteNotFound
	}
	return segments, nil
}
