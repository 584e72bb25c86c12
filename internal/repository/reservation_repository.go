package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coworkhub/room-booking/internal/model"
)

// ReservationRepo provides persistence for reservations plus the overlap
// check that guards the booking path.  Dates and times of day are stored in
// DATE and TIME columns and formatted back to "YYYY-MM-DD" / "HH:MM"
// strings in SQL, so no time-zone conversion ever happens in Go.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for handlers that open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ReservationDetail is a reservation enriched at read time with the
// referenced room's name and the referenced user's display fields.  The
// join replaces the foreign keys with something a calendar view can render
// directly.
type ReservationDetail struct {
	ID        uint64 `json:"id"`
	RoomID    uint64 `json:"room_id"`
	RoomName  string `json:"room_name"`
	UserID    uint64 `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

const detailColumns = `r.id, r.room_id, rm.name, r.user_id, u.name, u.email,
	              DATE_FORMAT(r.res_date, '%Y-%m-%d'),
	              TIME_FORMAT(r.start_time, '%H:%i'),
	              TIME_FORMAT(r.end_time, '%H:%i')`

// List returns reservations enriched with room and user display fields,
// optionally restricted to a single calendar date.  Results are ordered by
// (date, start time) ascending with ties broken by id, i.e. insertion
// order.
func (r *ReservationRepo) List(ctx context.Context, date string) ([]*ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      JOIN rooms rm ON rm.id = r.room_id
	      JOIN users u  ON u.id  = r.user_id`
	args := make([]interface{}, 0, 1)
	if date != "" {
		q += ` WHERE r.res_date = ?`
		args = append(args, date)
	}
	q += ` ORDER BY r.res_date, r.start_time, r.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ReservationDetail
	for rows.Next() {
		d := new(ReservationDetail)
		if err := rows.Scan(&d.ID, &d.RoomID, &d.RoomName, &d.UserID, &d.UserName, &d.UserEmail,
			&d.Date, &d.StartTime, &d.EndTime); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetail loads a single reservation with its joined display fields.
// Returns ErrReservationNotFound when the id is unknown.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      JOIN rooms rm ON rm.id = r.room_id
	      JOIN users u  ON u.id  = r.user_id
	      WHERE r.id = ?`
	d := new(ReservationDetail)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.RoomID, &d.RoomName, &d.UserID,
		&d.UserName, &d.UserEmail, &d.Date, &d.StartTime, &d.EndTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return d, nil
}

// GetByID returns the bare reservation row.  Handlers use it to enforce
// ownership before a cancel.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, room_id, user_id,
	                  DATE_FORMAT(res_date, '%Y-%m-%d'),
	                  TIME_FORMAT(start_time, '%H:%i'),
	                  TIME_FORMAT(end_time, '%H:%i'),
	                  created_at
	           FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(&res.ID, &res.RoomID, &res.UserID,
		&res.Date, &res.StartTime, &res.EndTime, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// HasConflictTx runs the overlap test against existing reservations for the
// same room and date within the scope of an existing transaction.  Two
// half-open intervals [a,b) and [c,d) overlap iff a < d AND c < b, so the
// query matches any row with start_time < new.end AND end_time > new.start.
// The caller must hold the room row lock before invoking this so that two
// concurrent bookings cannot both observe an empty result.
func (r *ReservationRepo) HasConflictTx(ctx context.Context, tx *sql.Tx, roomID uint64, date, start, end string) (bool, error) {
	const q = `SELECT EXISTS(
	               SELECT 1 FROM reservations
	               WHERE room_id = ? AND res_date = ?
	                 AND start_time < ? AND end_time > ?)`
	var conflict bool
	if err := tx.QueryRowContext(ctx, q, roomID, date, end, start).Scan(&conflict); err != nil {
		return false, err
	}
	return conflict, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated id on the provided record.  The
// caller must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, res_date, start_time, end_time)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.RoomID, res.UserID, res.Date, res.StartTime, res.EndTime)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// Delete removes a reservation by id.  A second delete of the same id
// returns ErrReservationNotFound; the record is gone, not tombstoned.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
