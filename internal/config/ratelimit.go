package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one token bucket profile.  The booking
// API runs two: a roomy per-IP bucket in front of availability
// search, and a small per-user bucket in front of seat locking.
// Search is cheap and additionally cached; locking writes contended
// seat_locks rows, so one user retrying a full bus in a tight loop
// must not starve everyone else's lock attempts.
type RateLimitConfig struct {
	Enabled        bool
	Name           string // key namespace, distinguishes the buckets in Redis
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // idle lifetime of a bucket key
	PerUser        bool          // bucket per authenticated user; falls back to client IP
	Prefix         string
	Debug          bool
}

// LoadSearchRateLimit builds the profile for GET /v1/search.  The
// defaults allow bursts of 60 requests per client IP, refilling two
// tokens per second: enough for a seat map polling every few seconds.
func LoadSearchRateLimit() RateLimitConfig {
	return sanitize(RateLimitConfig{
		Enabled:        envBool("SEARCH_RATE_ENABLED", true),
		Name:           "search",
		Capacity:       envInt("SEARCH_RATE_CAPACITY", 60),
		RefillTokens:   envInt("SEARCH_RATE_REFILL_TOKENS", 2),
		RefillInterval: envDur("SEARCH_RATE_REFILL_INTERVAL", time.Second),
		TTL:            envDur("SEARCH_RATE_TTL", 10*time.Minute),
		PerUser:        false,
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	})
}

// LoadLockRateLimit builds the profile for the lock and release
// endpoints.  These run after JWT authentication, so the bucket is
// keyed by user rather than IP and sized for a human booking flow:
// ten attempts in hand, one refilled every two seconds.
func LoadLockRateLimit() RateLimitConfig {
	return sanitize(RateLimitConfig{
		Enabled:        envBool("LOCK_RATE_ENABLED", true),
		Name:           "lock",
		Capacity:       envInt("LOCK_RATE_CAPACITY", 10),
		RefillTokens:   envInt("LOCK_RATE_REFILL_TOKENS", 1),
		RefillInterval: envDur("LOCK_RATE_REFILL_INTERVAL", 2*time.Second),
		TTL:            envDur("LOCK_RATE_TTL", 10*time.Minute),
		PerUser:        true,
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	})
}

// sanitize clamps a profile into usable shape so a bad environment
// value can never produce a bucket that blocks everything forever.
func sanitize(cfg RateLimitConfig) RateLimitConfig {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// The bucket key must outlive a full refill cycle or limits reset
	// early for idle clients.
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
