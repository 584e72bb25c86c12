package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coworkhub/room-booking/internal/repository"
)

func setupReservationHandler(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *ReservationHandler) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewReservationHandler(
		repository.NewRoomRepo(db),
		repository.NewReservationRepo(db),
		zap.NewNop(),
	)
	return db, mock, h
}

func authedContext(t *testing.T, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newJSONContext(t, method, target, body)
	// JWT numeric claims decode as float64, mirror that here
	c.Set("user_id", float64(userID))
	c.Set("role", role)
	return c, rec
}

func detailRow(id, roomID, userID uint64, date, start, end string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "room_id", "room_name", "user_id", "user_name", "user_email",
		"date", "start_time", "end_time",
	}).AddRow(id, roomID, "Sala A", userID, "Ana", "ana@example.com", date, start, end)
}

// expectBooking wires the mock for one full booking transaction.
func expectBooking(mock sqlmock.Sqlmock, id, roomID uint64, date, start, end string, conflict bool) {
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(roomID, date, end, start).
		WillReturnRows(sqlmock.NewRows([]string{"conflict"}).AddRow(conflict))
	if conflict {
		mock.ExpectRollback()
		return
	}
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(roomID, sqlmock.AnyArg(), date, start, end).
		WillReturnResult(sqlmock.NewResult(int64(id), 1))
	mock.ExpectCommit()
	mock.ExpectQuery("WHERE r.id = ").
		WithArgs(id).
		WillReturnRows(detailRow(id, roomID, 5, date, start, end))
}

// Back-to-back bookings that touch at 10:00 both succeed; a third booking
// overlapping both is rejected with 409.
func TestCreateReservation_BoundaryTouchAllowedOverlapRejected(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	expectBooking(mock, 1, 1, "2024-01-10", "09:00", "10:00", false)
	c, rec := authedContext(t, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"date":"2024-01-10","startTime":"09:00","endTime":"10:00"}`, 5, "MEMBER")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	expectBooking(mock, 2, 1, "2024-01-10", "10:00", "11:00", false)
	c, rec = authedContext(t, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"date":"2024-01-10","startTime":"10:00","endTime":"11:00"}`, 5, "MEMBER")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	expectBooking(mock, 0, 1, "2024-01-10", "09:30", "10:30", true)
	c, rec = authedContext(t, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"date":"2024-01-10","startTime":"09:30","endTime":"10:30"}`, 5, "MEMBER")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "time slot already booked", got["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_ReturnsEnrichedFields(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	expectBooking(mock, 7, 1, "2024-01-10", "14:00", "15:00", false)
	c, rec := authedContext(t, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"date":"2024-01-10","startTime":"14:00","endTime":"15:00"}`, 5, "MEMBER")
	require.NoError(t, h.Create(c))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Sala A", got["room_name"])
	assert.Equal(t, "Ana", got["user_name"])
	assert.Equal(t, "ana@example.com", got["user_email"])
}

func TestCreateReservation_Validation(t *testing.T) {
	db, _, h := setupReservationHandler(t)
	defer db.Close()

	cases := []struct {
		name string
		body string
	}{
		{"missing room", `{"date":"2024-01-10","startTime":"09:00","endTime":"10:00"}`},
		{"bad date", `{"roomId":1,"date":"10/01/2024","startTime":"09:00","endTime":"10:00"}`},
		{"bad time", `{"roomId":1,"date":"2024-01-10","startTime":"9am","endTime":"10:00"}`},
		{"inverted interval", `{"roomId":1,"date":"2024-01-10","startTime":"11:00","endTime":"10:00"}`},
		{"empty interval", `{"roomId":1,"date":"2024-01-10","startTime":"10:00","endTime":"10:00"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := authedContext(t, http.MethodPost, "/v1/reservations", tc.body, 5, "MEMBER")
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateReservation_UnknownRoom(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := authedContext(t, http.MethodPost, "/v1/reservations",
		`{"roomId":99,"date":"2024-01-10","startTime":"09:00","endTime":"10:00"}`, 5, "MEMBER")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReservations_RejectsMalformedDate(t *testing.T) {
	db, _, h := setupReservationHandler(t)
	defer db.Close()

	c, rec := authedContext(t, http.MethodGet, "/v1/reservations?date=Jan-10", "", 5, "MEMBER")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReservations_FiltersByDate(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	mock.ExpectQuery("WHERE r.res_date = ").
		WithArgs("2024-01-10").
		WillReturnRows(detailRow(1, 1, 5, "2024-01-10", "09:00", "10:00"))

	c, rec := authedContext(t, http.MethodGet, "/v1/reservations?date=2024-01-10", "", 5, "MEMBER")
	require.NoError(t, h.List(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-10", got[0]["date"])
}

func reservationRow(id, roomID, userID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "room_id", "user_id", "date", "start_time", "end_time", "created_at"}).
		AddRow(id, roomID, userID, "2024-01-10", "09:00", "10:00", time.Now().UTC())
}

func TestDeleteReservation_MemberCannotCancelOthers(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM reservations WHERE id = ").
		WithArgs(uint64(1)).
		WillReturnRows(reservationRow(1, 1, 8)) // owned by user 8

	c, rec := authedContext(t, http.MethodDelete, "/v1/reservations/1", "", 5, "MEMBER")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteReservation_AdminCancelsAny(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM reservations WHERE id = ").
		WithArgs(uint64(1)).
		WillReturnRows(reservationRow(1, 1, 8))
	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := authedContext(t, http.MethodDelete, "/v1/reservations/1", "", 2, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteReservation_SecondCancelIsNotFound(t *testing.T) {
	db, mock, h := setupReservationHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM reservations WHERE id = ").
		WithArgs(uint64(1)).
		WillReturnError(sql.ErrNoRows)

	c, rec := authedContext(t, http.MethodDelete, "/v1/reservations/1", "", 2, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
