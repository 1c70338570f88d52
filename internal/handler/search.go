package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tripgo/seat-reservation/internal/repository"
	"github.com/tripgo/seat-reservation/internal/service"
)

// defaultSeatClass is used when the caller does not name a seat class
// in the search query.
const defaultSeatClass = "SLEEPER"

// SearchHandler exposes fare and seat availability for a partial span
// of a scheduled trip.  The endpoint is read-only and unauthenticated:
// guests browse availability before logging in to lock seats.  The
// answer is a point-in-time snapshot — seats are only authoritatively
// claimed at lock time.
type SearchHandler struct {
	ScheduleRepo *repository.ScheduleRepo
	Engine       *service.AvailabilityEngine
	Locks        *service.SeatLockManager
}

// NewSearchHandler constructs a SearchHandler.  All dependencies must
// be non-nil.
func NewSearchHandler(scheduleRepo *repository.ScheduleRepo, engine *service.AvailabilityEngine, locks *service.SeatLockManager) *SearchHandler {
	if scheduleRepo == nil || engine == nil || locks == nil {
		panic("nil dependency passed to NewSearchHandler")
	}
	return &SearchHandler{ScheduleRepo: scheduleRepo, Engine: engine, Locks: locks}
}

// Search handles GET /v1/search?schedule_id=&from=&to=&seat_class=.
// It resolves the requested stop span on the schedule's route,
// computes the aggregate fare for the span and reports per-seat
// availability against confirmed bookings.  Seats under an active
// lock are listed separately in "locked_seats": the locks are a soft
// layer, and whether to hide locked seats from the customer is the
// booking flow's policy, not the availability computation's.
func (h *SearchHandler) Search(c echo.Context) error {
	scheduleID, err := strconv.ParseUint(c.QueryParam("schedule_id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
	}
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	seatClass := c.QueryParam("seat_class")
	if seatClass == "" {
		seatClass = defaultSeatClass
	}

	ctx := c.Request().Context()
	schedule, err := h.ScheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	result, err := h.Engine.Search(ctx, schedule, from, to, seatClass)
	if err != nil {
		var fareGap *service.FareNotDefinedError
		switch {
		case errors.Is(err, service.ErrInvalidStopSelection):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stop selection"})
		case errors.Is(err, repository.ErrRouteNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		case errors.Is(err, repository.ErrBusNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		case errors.As(err, &fareGap):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":      "fare not defined",
				"from_stop":  fareGap.FromStop,
				"to_stop":    fareGap.ToStop,
				"seat_class": fareGap.SeatClass,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
	}

	locks, err := h.Locks.ActiveLocks(ctx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	lockedSeats := make([]string, 0, len(locks))
	for _, l := range locks {
		lockedSeats = append(lockedSeats, l.SeatNumber)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id":  scheduleID,
		"seat_class":   seatClass,
		"fare":         result.Fare,
		"seats":        result.Seats,
		"locked_seats": lockedSeats,
	})
}
