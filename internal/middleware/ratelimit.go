package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tripgo/seat-reservation/internal/config"
)

// tokenBucketScript refills and drains one bucket atomically inside
// Redis, so every API replica enforces the same budget.  It returns
// {allowed, tokens left, milliseconds until the next refill}.
var tokenBucketScript = redis.NewScript(`
	local bucket = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local period_ms = tonumber(ARGV[4])
	local ttl_s = tonumber(ARGV[5])

	local state = redis.call('HMGET', bucket, 'tokens', 'refilled_ms')
	local tokens = tonumber(state[1])
	local refilled = tonumber(state[2])
	if tokens == nil or refilled == nil then
		tokens = capacity
		refilled = now_ms
	end

	if period_ms > 0 and refill > 0 then
		local elapsed = now_ms - refilled
		if elapsed > 0 then
			local ticks = math.floor(elapsed / period_ms)
			if ticks > 0 then
				tokens = math.min(capacity, tokens + ticks * refill)
				refilled = refilled + ticks * period_ms
			end
		end
	end

	local allowed = 0
	local wait_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		wait_ms = period_ms - (now_ms - refilled)
		if wait_ms < 0 then wait_ms = 0 end
	end

	redis.call('HMSET', bucket, 'tokens', tokens, 'refilled_ms', refilled)
	redis.call('EXPIRE', bucket, ttl_s)

	return { allowed, tokens, wait_ms }
`)

// NewTokenBucket limits request rates for one endpoint profile.  The
// availability search profile buckets by client IP; the seat lock
// profile runs behind JWT authentication and buckets by user, so one
// holder retrying a contended bus cannot crowd out other bookers.
// Redis being down fails open: locking correctness lives in the
// seat_locks unique key, never here.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := bucketKey(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			ctx := c.Request().Context()
			vals, err := tokenBucketScript.Run(ctx, rdb, []string{key}, args...).Result()
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				}
				return next(c)
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
				}
				return next(c)
			}
			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			waitMs := asInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(waitMs) / 1000.0))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s retry=%dms", key, waitMs)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}

			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

// bucketKey names the Redis bucket for one caller of one profile.
// Per-user profiles fall back to the client IP when the user claim is
// absent: the lock routes reject such requests anyway, but the bucket
// must still drain so an unauthenticated flood is counted somewhere.
func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
	scope := ""
	if cfg.PerUser {
		scope = authenticatedUserScope(c)
	}
	if scope == "" {
		if ip := c.RealIP(); ip != "" {
			scope = "ip:" + ip
		} else {
			scope = "ip:unknown"
		}
	}
	return cfg.Prefix + ":" + cfg.Name + ":" + scope
}

// authenticatedUserScope reads the user identity stored by the JWT
// middleware.  The subject claim may carry any JSON number or string
// shape depending on how the token was minted.
func authenticatedUserScope(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return "user:" + v
		}
	case float64:
		return "user:" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "user:" + strconv.FormatInt(v, 10)
	case int:
		return "user:" + strconv.Itoa(v)
	case uint64:
		return "user:" + strconv.FormatUint(v, 10)
	}
	return ""
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
