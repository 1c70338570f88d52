package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tripgo/seat-reservation/internal/model"
)

// lockShardCount is the number of mutex-guarded shards in the
// in-memory lock store.  Contention is per shard, never per store, so
// locking one seat does not serialize unrelated seats.
const lockShardCount = 64

type lockKey struct {
	scheduleID uint64
	seatNumber string
}

type lockShard struct {
	mu    sync.Mutex
	locks map[lockKey]model.SeatLock
}

// MemoryLockStore is an in-memory implementation of the lock store
// used by tests and self-contained runs.  Mutual exclusion is the
// striped-mutex equivalent of the SQL unique key: each (schedule,
// seat) key hashes to one of a fixed set of shards, and the
// check-then-insert for a key runs entirely under its shard's mutex.
// A batch spanning several shards acquires them in ascending index
// order so two overlapping batches can never deadlock.
type MemoryLockStore struct {
	shards [lockShardCount]lockShard
}

// NewMemoryLockStore returns an empty in-memory lock store.
func NewMemoryLockStore() *MemoryLockStore {
	s := &MemoryLockStore{}
	for i := range s.shards {
		s.shards[i].locks = make(map[lockKey]model.SeatLock)
	}
	return s
}

func shardIndex(k lockKey) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatUint(k.scheduleID, 10)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(k.seatNumber))
	return int(h.Sum32() % lockShardCount)
}

// AcquireBatch inserts every lock in the batch or none of them.  All
// shards covering the batch are held for the duration of the
// check-then-insert, making the whole batch atomic with respect to
// competing callers: of two racing batches that share a seat, exactly
// one observes the seat free and inserts.
func (s *MemoryLockStore) AcquireBatch(_ context.Context, locks []model.SeatLock, now time.Time) ([]string, error) {
	if len(locks) == 0 {
		return nil, nil
	}

	// Collect the distinct shard indexes and lock them in ascending
	// order.
	needed := map[int]struct{}{}
	for _, l := range locks {
		needed[shardIndex(lockKey{l.ScheduleID, l.SeatNumber})] = struct{}{}
	}
	indexes := make([]int, 0, len(needed))
	for i := range needed {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		s.shards[i].mu.Lock()
	}
	defer func() {
		for _, i := range indexes {
			s.shards[i].mu.Unlock()
		}
	}()

	var conflicts []string
	for _, l := range locks {
		k := lockKey{l.ScheduleID, l.SeatNumber}
		if existing, ok := s.shards[shardIndex(k)].locks[k]; ok && existing.Active(now) {
			conflicts = append(conflicts, l.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	for _, l := range locks {
		k := lockKey{l.ScheduleID, l.SeatNumber}
		// Expired rows on the key are overwritten, mirroring the SQL
		// store's in-transaction purge.
		s.shards[shardIndex(k)].locks[k] = l
	}
	return nil, nil
}

// ReleaseByToken deletes every lock sharing the token and returns the
// number removed.  Unknown tokens are a no-op.
func (s *MemoryLockStore) ReleaseByToken(_ context.Context, token string) (int64, error) {
	var removed int64
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, l := range sh.locks {
			if l.LockToken == token {
				delete(sh.locks, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// DeleteExpired removes every lock with expiry at or before now and
// returns the number reclaimed.
func (s *MemoryLockStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, l := range sh.locks {
			if !l.Active(now) {
				delete(sh.locks, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// ActiveBySchedule lists the locks on a schedule that are still alive
// at the given instant.  Expired rows are filtered out even when no
// sweep has deleted them yet.
func (s *MemoryLockStore) ActiveBySchedule(_ context.Context, scheduleID uint64, now time.Time) ([]model.SeatLock, error) {
	var out []model.SeatLock
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, l := range sh.locks {
			if k.scheduleID == scheduleID && l.Active(now) {
				out = append(out, l)
			}
		}
		sh.mu.Unlock()
	}
	return out, nil
}
