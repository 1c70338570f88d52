package config

import (
	"time"
)

// AvailabilityCacheConfig controls the Redis response cache in front
// of the availability search endpoint.  Search answers are
// point-in-time snapshots that are re-validated at lock time, so a
// short TTL trades a little staleness for a lot of read throughput.
// The middleware additionally caps the TTL against the seat lock
// duration so a freshly locked seat never looks free for long.
type AvailabilityCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int // largest response body worth caching; 0 means unlimited
}

// LoadAvailabilityCacheConfig reads the AVAIL_CACHE_* environment
// variables, falling back to defaults sized for a busy search page.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled:      envBool("AVAIL_CACHE_ENABLED", true),
		TTL:          envDur("AVAIL_CACHE_TTL", 30*time.Second),
		Prefix:       envStr("AVAIL_CACHE_PREFIX", "avail"),
		MaxBodyBytes: envInt("AVAIL_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
