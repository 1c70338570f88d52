package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tripgo/seat-reservation/internal/model"
)

// ScheduleRepo provides read access to the route_schedules table.
// Schedules tie a route to a bus for one departure; locks and
// bookings hang off schedule IDs.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the provided
// database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// GetByID returns one schedule by primary key.  Missing or inactive
// schedules are reported as ErrScheduleNotFound so callers cannot
// lock seats on a trip that is closed for booking.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (model.Schedule, error) {
	const q = `SELECT id, route_id, bus_id, departure_time, arrival_time, is_active
               FROM route_schedules
               WHERE id = ? AND is_active = 1`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.RouteID, &s.BusID, &s.DepartureTime, &s.ArrivalTime, &s.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Schedule{}, ErrScheduleNotFound
		}
		return model.Schedule{}, err
	}
	return s, nil
}
