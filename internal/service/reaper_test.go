package service

import (
	"context"
	"testing"
	"time"

	"github.com/tripgo/seat-reservation/internal/repository"
)

func TestReaperPurgesExpiredLocks(t *testing.T) {
	t.Parallel()
	store := repository.NewMemoryLockStore()
	clock := newFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	m := NewSeatLockManager(store, time.Minute, clock.Now)
	ctx := context.Background()

	if _, err := m.LockSeats(ctx, 1, []string{"L1", "L2"}, 1); err != nil {
		t.Fatalf("LockSeats: %v", err)
	}
	clock.Advance(2 * time.Minute) // both locks are now dead

	reaper := NewLockReaper(m, 5*time.Millisecond)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go reaper.Run(runCtx)

	// The sweep runs on its own ticker; poll until the rows are
	// physically gone.
	deadline := time.Now().Add(2 * time.Second)
	for {
		locks, err := store.ActiveBySchedule(ctx, 1, clock.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("ActiveBySchedule: %v", err)
		}
		if len(locks) == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expired locks still present after reaper ran: %+v", locks)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReaperStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)
	reaper := NewLockReaper(m, 5*time.Millisecond)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(runCtx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
}
