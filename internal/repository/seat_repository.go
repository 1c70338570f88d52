package repository

import (
	"context"
	"database/sql"

	"github.com/tripgo/seat-reservation/internal/model"
)

// SeatRepo provides read access to the seats table.  The seat layout
// of a bus is generated once at registration time and is immutable
// afterwards, so the repository exposes no mutation methods.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ListByBus returns every seat of a bus ordered by seat number.  An
// empty result means the bus is unknown or has no generated layout
// and is reported as ErrBusNotFound.
func (r *SeatRepo) ListByBus(ctx context.Context, busID uint64) ([]model.Seat, error) {
	const q = `SELECT id, bus_id, seat_number, seat_class
               FROM seats
               WHERE bus_id = ?
               ORDER BY seat_number ASC`
	rows, err := r.db.QueryContext(ctx, q, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.BusID, &s.SeatNumber, &s.SeatClass); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrBusNotFound
	}
	return seats, nil
}
