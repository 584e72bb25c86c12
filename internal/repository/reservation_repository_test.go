package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/room-booking/internal/model"
)

func setupReservationRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *ReservationRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewReservationRepo(db)
}

func detailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "room_id", "room_name", "user_id", "user_name", "user_email",
		"date", "start_time", "end_time",
	})
}

func TestReservationList_NoFilter(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	rows := detailRows().
		AddRow(1, 1, "Sala A", 5, "Ana", "ana@example.com", "2024-01-10", "09:00", "10:00").
		AddRow(2, 1, "Sala A", 6, "Bruno", "bruno@example.com", "2024-01-10", "10:00", "11:00")
	mock.ExpectQuery("ORDER BY r.res_date, r.start_time, r.id").WillReturnRows(rows)

	out, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Sala A", out[0].RoomName)
	assert.Equal(t, "ana@example.com", out[0].UserEmail)
	assert.Equal(t, "10:00", out[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationList_DateFilterIsApplied(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectQuery("WHERE r.res_date = ").
		WithArgs("2024-01-10").
		WillReturnRows(detailRows().
			AddRow(1, 1, "Sala A", 5, "Ana", "ana@example.com", "2024-01-10", "09:00", "10:00"))

	out, err := repo.List(context.Background(), "2024-01-10")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-01-10", out[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The overlap test is [a,b) vs [c,d): overlap iff a < d AND c < b.  The
// query therefore compares start_time < candidate end and end_time >
// candidate start, in that argument order.
func TestHasConflictTx_ArgumentOrder(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(1), "2024-01-10", "10:30", "09:30").
		WillReturnRows(sqlmock.NewRows([]string{"conflict"}).AddRow(true))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	conflict, err := repo.HasConflictTx(context.Background(), tx, 1, "2024-01-10", "09:30", "10:30")
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasConflictTx_NoOverlap(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(1), "2024-01-10", "11:00", "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"conflict"}).AddRow(false))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	conflict, err := repo.HasConflictTx(context.Background(), tx, 1, "2024-01-10", "10:00", "11:00")
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestCreateTx_SetsGeneratedID(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(1), uint64(5), "2024-01-10", "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	res := &model.Reservation{RoomID: 1, UserID: 5, Date: "2024-01-10", StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, repo.CreateTx(context.Background(), tx, res))
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint64(42), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationDelete_SecondDeleteReportsNotFound(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 42))

	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 42), ErrReservationNotFound)
}

func TestGetDetail_NotFound(t *testing.T) {
	db, mock, repo := setupReservationRepo(t)
	defer db.Close()

	mock.ExpectQuery("WHERE r.id = ").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDetail(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
