package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/coworkhub/room-booking/internal/model"
)

// RoomRepo provides CRUD operations over the `rooms` table.  It embeds a
// database handle to perform queries and commands.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span the room lock and the reservation insert.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// Create inserts a new room and reads the row back so generated fields
// (id, timestamps) are populated on the provided struct.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const qInsert = `INSERT INTO rooms (name, capacity, resources) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, rm.Name, rm.Capacity, rm.Resources)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)

	const qSelect = `SELECT id, name, capacity, resources, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, rm.ID).
		Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Resources, &rm.CreatedAt, &rm.UpdatedAt)
}

// List returns every room ordered by id.  There is no filtering or
// pagination; the inventory of a single space stays small.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	const q = `SELECT id, name, capacity, resources, created_at, updated_at FROM rooms ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		rm := new(model.Room)
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Resources, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a room by its id.  It returns ErrRoomNotFound when no
// row exists.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, name, capacity, resources, created_at, updated_at FROM rooms WHERE id = ?`
	var rm model.Room
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Resources, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// LockTx verifies the room exists inside the given transaction and takes a
// row lock on it.  The lock serializes concurrent bookings for the same
// room so the overlap check and insert behave as one atomic step.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `SELECT id FROM rooms WHERE id = ? FOR UPDATE`
	var got uint64
	if err := tx.QueryRowContext(ctx, q, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}

// Update replaces the mutable fields of a room and reads the row back.
// Returns ErrRoomNotFound when the id is unknown.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	const q = `UPDATE rooms
	           SET name = ?, capacity = ?, resources = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Capacity, rm.Resources, rm.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "missing" from "no field changed".
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	const qSelect = `SELECT id, name, capacity, resources, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, rm.ID).
		Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Resources, &rm.CreatedAt, &rm.UpdatedAt)
}

// Delete removes a room.  Deletion is blocked with ErrRoomInUse while
// reservations for the room exist on any date; the schema's foreign key
// backs this check, so the MySQL restrict error is mapped the same way.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	const qBusy = `SELECT EXISTS(SELECT 1 FROM reservations WHERE room_id = ?)`
	var busy bool
	if err := r.db.QueryRowContext(ctx, qBusy, id).Scan(&busy); err != nil {
		return err
	}
	if busy {
		return ErrRoomInUse
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		// 1451: row is referenced by a foreign key (race with a fresh booking)
		if strings.Contains(err.Error(), "1451") {
			return ErrRoomInUse
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
