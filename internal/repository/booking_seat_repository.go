package repository

import (
	"context"
	"database/sql"

	"github.com/tripgo/seat-reservation/internal/model"
)

// BookingSeatRepo provides read access to the booking_seats table.
// Rows are written by the booking finalization flow, which lives
// outside this service; the availability engine reads them as the
// ground truth for which seat spans are sold.
type BookingSeatRepo struct {
	db *sql.DB
}

// NewBookingSeatRepo returns a new BookingSeatRepo bound to the
// provided database.
func NewBookingSeatRepo(db *sql.DB) *BookingSeatRepo { return &BookingSeatRepo{db: db} }

// ListBySchedule returns every confirmed seat span sold on a
// schedule.  A trip with no sales returns an empty slice, not an
// error.
func (r *BookingSeatRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.BookingSeat, error) {
	const q = `SELECT bs.id, bs.booking_id, b.schedule_id, bs.seat_number, bs.from_stop, bs.to_stop
               FROM booking_seats bs
               JOIN bookings b ON b.id = bs.booking_id
               WHERE b.schedule_id = ? AND b.status = 'CONFIRMED'`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var spans []model.BookingSeat
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.ScheduleID, &s.SeatNumber, &s.FromStop, &s.ToStop); err != nil {
			return nil, err
		}
		spans = append(spans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return spans, nil
}
