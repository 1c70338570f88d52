package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tripgo/seat-reservation/internal/config"
)

// snapshotWriter mirrors the response into a buffer while forwarding
// it to the client, capped so an oversized seat map never bloats the
// cache.
type snapshotWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (w *snapshotWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *snapshotWriter) Write(b []byte) (int, error) {
	if w.limit <= 0 {
		w.buf.Write(b)
	} else if remain := w.limit - w.size; remain > 0 {
		if int64(len(b)) <= remain {
			w.buf.Write(b)
		} else {
			w.buf.Write(b[:remain])
		}
	}
	w.size += int64(len(b))
	return w.ResponseWriter.Write(b)
}

// overflowed reports whether the response outgrew the snapshot limit,
// in which case the cached copy would be truncated and must not be
// stored.
func (w *snapshotWriter) overflowed() bool {
	return w.limit > 0 && w.size > w.limit
}

// availabilityCacheKey derives the Redis key for one search query.
// Two requests for the same schedule, stop span and seat class share
// an entry regardless of letter case, surrounding whitespace or query
// parameter order, matching how the availability engine resolves
// stops.  An unparseable schedule_id yields "" and the request skips
// the cache; the handler rejects it anyway.
func availabilityCacheKey(cfg config.AvailabilityCacheConfig, c echo.Context) string {
	scheduleID, err := strconv.ParseUint(c.QueryParam("schedule_id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return ""
	}
	from := strings.ToLower(strings.TrimSpace(c.QueryParam("from")))
	to := strings.ToLower(strings.TrimSpace(c.QueryParam("to")))
	class := strings.ToUpper(strings.TrimSpace(c.QueryParam("seat_class")))
	if class == "" {
		// Mirrors the search handler's default so explicit and implicit
		// SLEEPER queries share one entry.
		class = "SLEEPER"
	}

	// Stop names are free text; hash the span so they can never smuggle
	// key separators.
	span := sha1.Sum([]byte(from + "\x1f" + to + "\x1f" + class))
	return fmt.Sprintf("%s:sched:%d:%x", cfg.Prefix, scheduleID, span)
}

// availabilityCacheTTL caps the configured entry lifetime against the
// seat lock duration.  A cached search cannot show a just-locked seat
// as free for longer than a small slice of the hold itself.
func availabilityCacheTTL(configured, lockTTL time.Duration) time.Duration {
	ttl := configured
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if lockTTL > 0 && ttl > lockTTL/10 {
		ttl = lockTTL / 10
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// encodeSnapshot packs [4 bytes status][4 bytes headerLen][headerJSON][body].
func encodeSnapshot(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+4+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodeSnapshot(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// NewAvailabilityCache caches successful availability search
// responses in Redis.  Headers and body are stored together so a hit
// replays exactly what the handler produced.  Only 200 responses are
// cached: errors and conflicts must always reflect the live state.
// Redis being down fails open to the handler.
func NewAvailabilityCache(cfg config.AvailabilityCacheConfig, rdb *redis.Client, lockTTL time.Duration) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := availabilityCacheTTL(cfg.TTL, lockTTL)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := availabilityCacheKey(cfg, c)
			if key == "" {
				return next(c)
			}
			ctx := c.Request().Context()

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodeSnapshot(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			w := &snapshotWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if w.status == http.StatusOK && !w.overflowed() {
				hdr := make(http.Header, len(c.Response().Header()))
				for k, vals := range c.Response().Header() {
					vv := make([]string, len(vals))
					copy(vv, vals)
					hdr[k] = vv
				}
				if payload, err := encodeSnapshot(w.status, hdr, w.buf.Bytes()); err == nil {
					// The request context may already be done once the
					// response is written; store with a fresh one.
					_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
				}
			}
			return nil
		}
	}
}
