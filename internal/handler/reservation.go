package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhub/room-booking/internal/model"
	"github.com/coworkhub/room-booking/internal/queue"
	"github.com/coworkhub/room-booking/internal/repository"
	queue_publisher "github.com/coworkhub/room-booking/internal/service"
)

// ReservationHandler implements the reservation ledger endpoints.  Booking
// runs the overlap check and the insert inside one database transaction
// with the room row locked, so two concurrent requests for the same room
// and date cannot both pass the check; one of them waits on the lock and
// then sees the other's insert.
type ReservationHandler struct {
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
	Log          *zap.Logger
}

// NewReservationHandler constructs a ReservationHandler.  All dependencies
// must be non-nil.
func NewReservationHandler(rooms *repository.RoomRepo, reservations *repository.ReservationRepo, log *zap.Logger) *ReservationHandler {
	if rooms == nil || reservations == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationHandler{Rooms: rooms, Reservations: reservations, Log: log}
}

// createReservationReq mirrors the booking form payload.  The user is taken
// from the JWT, never from the body.
type createReservationReq struct {
	RoomID    uint64 `json:"roomId"`
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM
}

// validDate reports whether s is a well-formed calendar date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// validClock reports whether s is a well-formed zero-padded time of day.
func validClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// List handles GET /v1/reservations.  An optional ?date=YYYY-MM-DD query
// restricts the ledger to one calendar day.  Entries come back enriched
// with room and user display fields, ordered by date then start time.
func (h *ReservationHandler) List(c echo.Context) error {
	date := c.QueryParam("date")
	if date != "" && !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	out, err := h.Reservations.List(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if out == nil {
		out = []*repository.ReservationDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/reservations.  Inside a single transaction it
// locks the room row (verifying the room exists), rejects the candidate
// with 409 when its half-open interval [start, end) overlaps an existing
// reservation for the same room and date, and otherwise inserts.  Bookings
// that touch at a boundary (one ends 10:00, the next starts 10:00) are
// accepted.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId is required"})
	}
	if !validDate(req.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if !validClock(req.StartTime) || !validClock(req.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime/endTime must be HH:MM"})
	}
	// zero-padded HH:MM compares correctly as strings
	if req.StartTime >= req.EndTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime must be before endTime"})
	}

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Rooms.LockTx(ctx, tx, req.RoomID); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	conflict, err := h.Reservations.HasConflictTx(ctx, tx, req.RoomID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if conflict {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrTimeConflict.Error()})
	}

	res := &model.Reservation{
		RoomID:    req.RoomID,
		UserID:    userID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	detail, err := h.Reservations.GetDetail(ctx, res.ID)
	if err != nil {
		// the row is committed; return the bare record rather than failing
		h.Log.Warn("reservation created but detail lookup failed", zap.Uint64("id", res.ID), zap.Error(err))
		return c.JSON(http.StatusCreated, res)
	}

	// best effort: a broker outage must not fail the booking
	ev := queue.ReservationConfirmedEvent{
		ReservationID: detail.ID,
		RoomID:        detail.RoomID,
		RoomName:      detail.RoomName,
		UserID:        detail.UserID,
		UserName:      detail.UserName,
		Date:          detail.Date,
		StartTime:     detail.StartTime,
		EndTime:       detail.EndTime,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationConfirmed(ctx, ev)
	}()

	return c.JSON(http.StatusCreated, detail)
}

// Delete handles DELETE /v1/reservations/:id.  Members may cancel only
// their own reservations; admins may cancel any.  Cancelling an id that is
// already gone yields 404, a second delete is not silently absorbed.
func (h *ReservationHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !isAdmin(c) && res.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reservations.Delete(ctx, id); err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete reservation failed"})
	}

	ev := queue.ReservationCancelledEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		UserID:        res.UserID,
		Date:          res.Date,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		CancelledAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationCancelled(ctx, ev)
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}
