package model

import (
	"testing"
	"time"
)

func TestSeatLockActiveBoundary(t *testing.T) {
	t.Parallel()
	expiry := time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	lock := SeatLock{ExpiresAt: expiry}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before expiry", now: expiry.Add(-time.Second), want: true},
		{name: "exactly at expiry counts as dead", now: expiry, want: false},
		{name: "after expiry", now: expiry.Add(time.Second), want: false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := lock.Active(test.now); got != test.want {
				t.Errorf("Active(%v) = %v, want %v", test.now, got, test.want)
			}
		})
	}
}
