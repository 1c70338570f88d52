package service

import (
	"context"
	"log"
	"time"
)

// DefaultReapInterval is how often the reaper sweeps expired locks
// when no explicit interval is configured.
const DefaultReapInterval = time.Minute

// LockReaper periodically purges expired seat locks so the table does
// not grow unbounded and lock checks don't wade through stale rows.
// It is purely a liveness mechanism: every read of lock state already
// checks expiry against the clock, so a late or missed sweep never
// makes a dead lock look alive.
type LockReaper struct {
	locks    *SeatLockManager
	interval time.Duration
}

// NewLockReaper constructs a reaper over the lock manager.  A
// non-positive interval falls back to DefaultReapInterval.
func NewLockReaper(locks *SeatLockManager, interval time.Duration) *LockReaper {
	if locks == nil {
		panic("nil SeatLockManager passed to NewLockReaper")
	}
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &LockReaper{locks: locks, interval: interval}
}

// Run sweeps on a fixed ticker until the context is cancelled.  It is
// meant to be started in its own goroutine at process startup and
// stopped through ctx at shutdown.  Sweep failures are logged and the
// loop keeps going; a transient storage error must not kill the
// reaper for the life of the process.
func (r *LockReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("reaper: started (interval=%s)", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reaper: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			n, err := r.locks.CleanupExpired(ctx)
			if err != nil {
				log.Printf("reaper: cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reaper: reclaimed %d expired seat locks", n)
			}
		}
	}
}
