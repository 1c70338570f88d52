package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripgo/seat-reservation/internal/queue"
	"github.com/tripgo/seat-reservation/internal/repository"
	"github.com/tripgo/seat-reservation/internal/service"
)

// BookingHandler exposes the seat locking surface of the booking
// flow: placing a temporary exclusive hold on seats before payment
// and releasing a hold by its token.  JWT authentication must have
// run before these handlers; the lock is attributed to the
// authenticated user.
type BookingHandler struct {
	ScheduleRepo *repository.ScheduleRepo
	Locks        *service.SeatLockManager
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(scheduleRepo *repository.ScheduleRepo, locks *service.SeatLockManager) *BookingHandler {
	if scheduleRepo == nil || locks == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{ScheduleRepo: scheduleRepo, Locks: locks}
}

// LockSeats handles POST /v1/schedules/:id/lock.  The request body
// must contain a JSON object with a "seat_numbers" array.  On success
// it returns 201 Created with the lock token shared by all seats and
// the expiry timestamp.  If any requested seat is already actively
// locked the whole batch is rejected with 409 Conflict naming the
// conflicting seats; the caller should re-query availability and
// retry with different seats.
func (h *BookingHandler) LockSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	// ensure the schedule exists and is open for booking
	if _, err := h.ScheduleRepo.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var body struct {
		SeatNumbers []string `json:"seat_numbers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	grant, err := h.Locks.LockSeats(ctx, scheduleID, body.SeatNumbers, userID)
	if err != nil {
		var unavailable *service.SeatUnavailableError
		switch {
		case errors.Is(err, service.ErrNoSeatsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
		case errors.Is(err, service.ErrBlankSeatNumber):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers must not contain blank entries"})
		case errors.As(err, &unavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some seats are unavailable",
				"unavailable": unavailable.Seats,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock seats"})
		}
	}

	// Fire-and-forget event; a broker outage never fails the lock.
	go func() {
		_ = queue.PublishSeatEvent(context.Background(), queue.SeatEvent{
			Kind:        queue.EventSeatLocked,
			ScheduleID:  scheduleID,
			SeatNumbers: grant.Seats,
			LockToken:   grant.Token,
			UserID:      userID,
			ExpiresAt:   grant.ExpiresAt.Format(time.RFC3339),
			OccurredAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"status":             "LOCKED",
		"lock_token":         grant.Token,
		"seat_numbers":       grant.Seats,
		"expires_at":         grant.ExpiresAt.Format(time.RFC3339),
		"expires_in_minutes": int(h.Locks.TTL() / time.Minute),
	})
}

// ReleaseLock handles DELETE /v1/locks/:token.  It releases every
// seat locked under the token.  The operation is idempotent: an
// unknown or already-released token still answers 204 No Content, so
// abandoning flows can retry the release safely.
func (h *BookingHandler) ReleaseLock(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing lock token"})
	}
	if err := h.Locks.Release(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release lock"})
	}

	go func() {
		_ = queue.PublishSeatEvent(context.Background(), queue.SeatEvent{
			Kind:       queue.EventSeatReleased,
			LockToken:  token,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.NoContent(http.StatusNoContent)
}

// getUserID extracts the authenticated user's ID from the echo
// context, where the JWT middleware stored it.  The claim may arrive
// as a string or any numeric type depending on how the token was
// minted, so all reasonable encodings are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
