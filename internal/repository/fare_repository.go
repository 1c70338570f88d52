package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tripgo/seat-reservation/internal/model"
)

// FareRepo provides read access to the fares table.  Fare rows are
// maintained by operator administration; this service only sums them.
// Money columns are scanned through strings into decimals so no
// float64 conversion ever touches a price.
type FareRepo struct {
	db *sql.DB
}

// NewFareRepo returns a new FareRepo bound to the provided database.
func NewFareRepo(db *sql.DB) *FareRepo { return &FareRepo{db: db} }

// GetBySegmentAndClass returns the single fare row for a segment and
// seat class.  A missing row is reported as ErrFareNotFound.
func (r *FareRepo) GetBySegmentAndClass(ctx context.Context, segmentID uint64, seatClass string) (model.Fare, error) {
	const q = `SELECT id, route_segment_id, seat_class, base_fare, gst_percent
               FROM fares
               WHERE route_segment_id = ? AND seat_class = ?`
	var (
		f       model.Fare
		baseStr string
		gstStr  string
	)
	err := r.db.QueryRowContext(ctx, q, segmentID, seatClass).
		Scan(&f.ID, &f.RouteSegmentID, &f.SeatClass, &baseStr, &gstStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Fare{}, ErrFareNotFound
		}
		return model.Fare{}, err
	}
	if f.BaseFare, err = decimal.NewFromString(baseStr); err != nil {
		return model.Fare{}, err
	}
	if f.GSTPercent, err = decimal.NewFromString(gstStr); err != nil {
		return model.Fare{}, err
	}
	return f, nil
}
