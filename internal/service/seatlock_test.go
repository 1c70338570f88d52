package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tripgo/seat-reservation/internal/repository"
)

// fakeClock is a manually advanced clock shared by a lock manager
// under test.  It is safe for concurrent readers.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestManager(t *testing.T) (*SeatLockManager, *fakeClock) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	m := NewSeatLockManager(repository.NewMemoryLockStore(), 15*time.Minute, clock.Now)
	return m, clock
}

func TestLockSeatsGrantsBatchUnderOneToken(t *testing.T) {
	t.Parallel()
	m, clock := newTestManager(t)
	ctx := context.Background()

	grant, err := m.LockSeats(ctx, 7, []string{"L1", "L2", "U3"}, 42)
	if err != nil {
		t.Fatalf("LockSeats: %v", err)
	}
	if grant.Token == "" {
		t.Fatal("expected a non-empty lock token")
	}
	wantExpiry := clock.Now().Add(15 * time.Minute)
	if !grant.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", grant.ExpiresAt, wantExpiry)
	}

	locks, err := m.ActiveLocks(ctx, 7)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 3 {
		t.Fatalf("got %d active locks, want 3", len(locks))
	}
	for _, l := range locks {
		if l.LockToken != grant.Token {
			t.Errorf("seat %s carries token %q, want %q", l.SeatNumber, l.LockToken, grant.Token)
		}
		if l.LockedBy != 42 {
			t.Errorf("seat %s locked by %d, want 42", l.SeatNumber, l.LockedBy)
		}
	}
}

func TestLockSeatsInputValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		seats   []string
		wantErr error
	}{
		{name: "nil slice", seats: nil, wantErr: ErrNoSeatsRequested},
		{name: "empty slice", seats: []string{}, wantErr: ErrNoSeatsRequested},
		{name: "blank seat numbers", seats: []string{"", "   ", "\t"}, wantErr: ErrBlankSeatNumber},
		{name: "blank among valid", seats: []string{"L1", ""}, wantErr: ErrBlankSeatNumber},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			m, _ := newTestManager(t)
			if _, err := m.LockSeats(context.Background(), 1, test.seats, 1); !errors.Is(err, test.wantErr) {
				t.Errorf("err = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestLockSeatsBlankEntryLocksNothing(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.LockSeats(ctx, 4, []string{"L1", ""}, 8); !errors.Is(err, ErrBlankSeatNumber) {
		t.Fatalf("err = %v, want ErrBlankSeatNumber", err)
	}
	// The valid seat must not have been locked alongside the rejection.
	locks, err := m.ActiveLocks(ctx, 4)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 0 {
		t.Errorf("rejected request left locks behind: %+v", locks)
	}
	// L1 stays freely lockable afterwards.
	if _, err := m.LockSeats(ctx, 4, []string{"L1"}, 9); err != nil {
		t.Fatalf("relock after rejection: %v", err)
	}
}

func TestLockSeatsCollapsesDuplicates(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	grant, err := m.LockSeats(context.Background(), 1, []string{"L1", " L1", "L2", "L1 "}, 9)
	if err != nil {
		t.Fatalf("LockSeats: %v", err)
	}
	if len(grant.Seats) != 2 || grant.Seats[0] != "L1" || grant.Seats[1] != "L2" {
		t.Errorf("grant.Seats = %v, want [L1 L2]", grant.Seats)
	}
}

func TestLockSeatsExpiryHasWholeSecondPrecision(t *testing.T) {
	t.Parallel()
	// A clock mid-second: the grant must not promise sub-second expiry
	// precision the second-granular storage cannot keep.
	clock := newFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 789123456, time.UTC))
	m := NewSeatLockManager(repository.NewMemoryLockStore(), 15*time.Minute, clock.Now)
	ctx := context.Background()

	grant, err := m.LockSeats(ctx, 6, []string{"L1"}, 1)
	if err != nil {
		t.Fatalf("LockSeats: %v", err)
	}
	if grant.ExpiresAt.Nanosecond() != 0 {
		t.Errorf("ExpiresAt = %v, want a whole-second timestamp", grant.ExpiresAt)
	}

	locks, err := m.ActiveLocks(ctx, 6)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 1 {
		t.Fatalf("got %d active locks, want 1", len(locks))
	}
	// The stored expiry and the granted expiry must be the same instant.
	if !locks[0].ExpiresAt.Equal(grant.ExpiresAt) {
		t.Errorf("stored ExpiresAt = %v, grant says %v", locks[0].ExpiresAt, grant.ExpiresAt)
	}
}

func TestLockSeatsConflictFailsWholeBatch(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.LockSeats(ctx, 5, []string{"B"}, 1); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	_, err := m.LockSeats(ctx, 5, []string{"A", "B"}, 2)
	var unavailable *SeatUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *SeatUnavailableError", err)
	}
	if len(unavailable.Seats) != 1 || unavailable.Seats[0] != "B" {
		t.Errorf("conflicting seats = %v, want [B]", unavailable.Seats)
	}

	// Seat A from the failed batch must not be left locked.
	locks, err := m.ActiveLocks(ctx, 5)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	for _, l := range locks {
		if l.SeatNumber == "A" {
			t.Error("seat A left locked by a failed batch")
		}
	}
	if len(locks) != 1 {
		t.Errorf("got %d active locks, want only the seeded one", len(locks))
	}
}

func TestLockSeatsSameSeatDifferentSchedules(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.LockSeats(ctx, 1, []string{"L1"}, 1); err != nil {
		t.Fatalf("schedule 1: %v", err)
	}
	// The same physical seat number on another trip is an unrelated key.
	if _, err := m.LockSeats(ctx, 2, []string{"L1"}, 2); err != nil {
		t.Fatalf("schedule 2: %v", err)
	}
}

func TestLockSeatsMutualExclusion(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	ctx := context.Background()

	const racers = 64
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.LockSeats(ctx, 3, []string{"U7"}, uint64(i+1))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			var unavailable *SeatUnavailableError
			if !errors.As(err, &unavailable) {
				t.Fatalf("loser saw unexpected error: %v", err)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("%d callers acquired the same seat, want exactly 1", winners)
	}
}

func TestExpiredLockDoesNotBlockAcquisition(t *testing.T) {
	t.Parallel()
	m, clock := newTestManager(t)
	ctx := context.Background()

	first, err := m.LockSeats(ctx, 9, []string{"L4"}, 1)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	// Move just past expiry without running the reaper: the read path
	// alone must treat the lock as absent.
	clock.Advance(15*time.Minute + time.Second)

	locks, err := m.ActiveLocks(ctx, 9)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 0 {
		t.Fatalf("expired lock still reported active: %+v", locks)
	}

	second, err := m.LockSeats(ctx, 9, []string{"L4"}, 2)
	if err != nil {
		t.Fatalf("relock after expiry: %v", err)
	}
	if second.Token == first.Token {
		t.Error("relock reused the expired token")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	ctx := context.Background()

	grant, err := m.LockSeats(ctx, 11, []string{"L1", "L2"}, 3)
	if err != nil {
		t.Fatalf("LockSeats: %v", err)
	}
	if err := m.Release(ctx, grant.Token); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := m.Release(ctx, grant.Token); err != nil {
		t.Fatalf("second release of same token: %v", err)
	}
	if err := m.Release(ctx, "no-such-token"); err != nil {
		t.Fatalf("release of unknown token: %v", err)
	}
	if err := m.Release(ctx, ""); err != nil {
		t.Fatalf("release of empty token: %v", err)
	}

	locks, err := m.ActiveLocks(ctx, 11)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 0 {
		t.Errorf("locks survive release: %+v", locks)
	}
}

func TestCleanupExpiredReclaimsOnlyDeadLocks(t *testing.T) {
	t.Parallel()
	m, clock := newTestManager(t)
	ctx := context.Background()

	if _, err := m.LockSeats(ctx, 20, []string{"L1", "L2"}, 1); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if _, err := m.LockSeats(ctx, 20, []string{"L3"}, 2); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	// 6 more minutes: the first batch (16min old) is dead, the second
	// (6min old) is alive.
	clock.Advance(6 * time.Minute)
	n, err := m.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("reclaimed %d locks, want 2", n)
	}

	locks, err := m.ActiveLocks(ctx, 20)
	if err != nil {
		t.Fatalf("ActiveLocks: %v", err)
	}
	if len(locks) != 1 || locks[0].SeatNumber != "L3" {
		t.Errorf("surviving locks = %+v, want only L3", locks)
	}
}
