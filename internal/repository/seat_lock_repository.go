package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tripgo/seat-reservation/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
// The seat_locks table carries UNIQUE KEY (schedule_id, seat_number),
// so a duplicate-entry error on insert is the authoritative signal
// that another request holds the seat — the preceding read is only
// advisory.
const mysqlDupEntry = 1062

// lockTimeLayout matches the DATETIME formatting used for seat lock
// timestamps.  DATETIME keeps whole seconds, so writers must supply
// second-truncated timestamps or the stored expiry would drift from
// the one they report.  All comparisons run against caller-supplied
// UTC instants rather than the database clock so expiry stays
// testable.
const lockTimeLayout = "2006-01-02 15:04:05"

// SeatLockRepo provides data access to the seat_locks table.  It is
// the only writer of seat lock rows.  All methods compare expiry
// against timestamps supplied by the caller in UTC.
type SeatLockRepo struct {
	db *sql.DB
}

// NewSeatLockRepo returns a new SeatLockRepo bound to the provided
// database.
func NewSeatLockRepo(db *sql.DB) *SeatLockRepo { return &SeatLockRepo{db: db} }

// AcquireBatch inserts every lock in the batch or none of them.  The
// whole sequence runs in one transaction: expired rows for the
// requested keys are purged first (MySQL has no partial unique index,
// so a logically dead row would otherwise block the key), active
// conflicts are read for reporting, and the bulk insert is attempted.
// If a concurrent request wins the race between the read and the
// insert, the unique key rejects the insert with a duplicate-entry
// error; the transaction rolls back, leaving no partial locks, and
// the conflicting seats are re-read for the caller.
func (r *SeatLockRepo) AcquireBatch(ctx context.Context, locks []model.SeatLock, now time.Time) ([]string, error) {
	if len(locks) == 0 {
		return nil, nil
	}
	scheduleID := locks[0].ScheduleID
	seatNumbers := make([]string, 0, len(locks))
	for _, l := range locks {
		seatNumbers = append(seatNumbers, l.SeatNumber)
	}
	nowStr := now.UTC().Format(lockTimeLayout)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	in, inArgs := seatInClause(seatNumbers)

	// Purge logically dead rows on the requested keys so the unique
	// index only guards live locks.
	delArgs := append([]interface{}{scheduleID}, inArgs...)
	delArgs = append(delArgs, nowStr)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_locks WHERE schedule_id = ? AND seat_number IN (`+in+`) AND expires_at <= ?`,
		delArgs...,
	); err != nil {
		return nil, err
	}

	// Advisory read: report live conflicts before attempting the
	// insert.  The insert below remains the source of truth.
	conflicts, err := activeConflictsTx(ctx, tx, scheduleID, seatNumbers, nowStr)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	query := `INSERT INTO seat_locks (schedule_id, seat_number, lock_token, locked_by_user_id, expires_at, created_at) VALUES `
	args := make([]interface{}, 0, len(locks)*6)
	for i, l := range locks {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, l.ScheduleID, l.SeatNumber, l.LockToken, l.LockedBy,
			l.ExpiresAt.UTC().Format(lockTimeLayout), l.CreatedAt.UTC().Format(lockTimeLayout))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
			// Lost the race.  The deferred rollback discards any
			// partial state; re-read the winners for the error
			// report.  If the winner released in between, fall back
			// to naming the whole batch so the caller re-queries and
			// retries.
			lost, readErr := r.activeConflicts(ctx, scheduleID, seatNumbers, nowStr)
			if readErr != nil || len(lost) == 0 {
				return seatNumbers, nil
			}
			return lost, nil
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nil, nil
}

// ReleaseByToken deletes all seat locks sharing the token and returns
// the number of rows removed.  Unknown tokens remove zero rows; that
// is not an error.
func (r *SeatLockRepo) ReleaseByToken(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_locks WHERE lock_token = ?`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpired removes every lock whose expiry is at or before now
// and returns the number of rows reclaimed.  The reaper calls this on
// a fixed cadence; readers never depend on it having run.
func (r *SeatLockRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM seat_locks WHERE expires_at <= ?`,
		now.UTC().Format(lockTimeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActiveBySchedule lists the locks on a schedule that are still alive
// at the given instant.  Rows past their expiry are filtered in the
// query even when the reaper has not yet deleted them.
func (r *SeatLockRepo) ActiveBySchedule(ctx context.Context, scheduleID uint64, now time.Time) ([]model.SeatLock, error) {
	const q = `SELECT id, schedule_id, seat_number, lock_token, locked_by_user_id, expires_at, created_at
               FROM seat_locks
               WHERE schedule_id = ? AND expires_at > ?`
	rows, err := r.db.QueryContext(ctx, q, scheduleID, now.UTC().Format(lockTimeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []model.SeatLock
	for rows.Next() {
		var l model.SeatLock
		if err := rows.Scan(&l.ID, &l.ScheduleID, &l.SeatNumber, &l.LockToken, &l.LockedBy, &l.ExpiresAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locks, nil
}

// activeConflicts re-reads live locks for the given keys outside a
// transaction.  Used to build the conflict report after a lost
// insert race.
func (r *SeatLockRepo) activeConflicts(ctx context.Context, scheduleID uint64, seatNumbers []string, nowStr string) ([]string, error) {
	in, inArgs := seatInClause(seatNumbers)
	args := append([]interface{}{scheduleID}, inArgs...)
	args = append(args, nowStr)
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM seat_locks WHERE schedule_id = ? AND seat_number IN (`+in+`) AND expires_at > ?`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeatNumbers(rows)
}

// activeConflictsTx is the in-transaction variant of activeConflicts.
func activeConflictsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, seatNumbers []string, nowStr string) ([]string, error) {
	in, inArgs := seatInClause(seatNumbers)
	args := append([]interface{}{scheduleID}, inArgs...)
	args = append(args, nowStr)
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_number FROM seat_locks WHERE schedule_id = ? AND seat_number IN (`+in+`) AND expires_at > ?`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeatNumbers(rows)
}

func scanSeatNumbers(rows *sql.Rows) ([]string, error) {
	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// seatInClause builds a "?, ?, ?" placeholder list and the matching
// argument slice for an IN clause over seat numbers.
func seatInClause(seatNumbers []string) (string, []interface{}) {
	args := make([]interface{}, 0, len(seatNumbers))
	for _, s := range seatNumbers {
		args = append(args, s)
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(seatNumbers)), ","), args
}
