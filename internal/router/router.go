package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/tripgo/seat-reservation/internal/config"     // cache and rate limit configuration
	"github.com/tripgo/seat-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/tripgo/seat-reservation/internal/middleware" // import middleware for JWT authentication, rate limiting and caching
)

// Register wires every route of the booking core onto the provided
// Echo instance.  The health check stays outside /v1 so load
// balancers can probe it without authentication or rate limiting.
//
// The two route families carry different Redis token buckets: search
// is public, rate-limited per client IP and response-cached (the
// cache TTL is capped against lockTTL so a just-locked seat never
// looks free for long); locking and releasing require a valid access
// token and are rate-limited per user, because a lock is attributed
// to the requesting user.
func Register(e *echo.Echo, search *handler.SearchHandler, booking *handler.BookingHandler, jwtSecret string, rdb *redis.Client, lockTTL time.Duration) {
	// Health endpoint for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)

	searchLimit := middleware.NewTokenBucket(config.LoadSearchRateLimit(), rdb)
	lockLimit := middleware.NewTokenBucket(config.LoadLockRateLimit(), rdb)
	cache := middleware.NewAvailabilityCache(config.LoadAvailabilityCacheConfig(), rdb, lockTTL)

	v1 := e.Group("/v1")

	// Public availability search: fare + free seats for a stop span.
	v1.GET("/search", search.Search, searchLimit, cache)

	// Seat locking requires an authenticated user; the per-user bucket
	// runs after JWT so it can key on the subject claim.
	locked := v1.Group("", middleware.JWTAuth(jwtSecret), lockLimit)
	locked.POST("/schedules/:id/lock", booking.LockSeats)
	locked.DELETE("/locks/:token", booking.ReleaseLock)
}
