package model

import "time"

// Reservation records a booking of one room by one user over a half-open
// time interval [StartTime, EndTime) on a single calendar date.  Dates and
// times are kept as plain strings ("2006-01-02" and "15:04") because the
// application performs no time-zone conversion; a reservation at 09:00 means
// 09:00 on the wall clock of the space.
//
// Invariant: for a fixed (RoomID, Date) no two reservations' intervals
// overlap.  The repository enforces this inside the booking transaction.
//
// Fields:
//
//	ID        – primary key identifier.
//	RoomID    – room being booked (reservations.room_id, FK to rooms).
//	UserID    – account that booked it (reservations.user_id, FK to users).
//	Date      – calendar date, "YYYY-MM-DD".
//	StartTime – inclusive start, "HH:MM".
//	EndTime   – exclusive end, "HH:MM"; always after StartTime.
//	CreatedAt – creation timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"room_id"`
	UserID    uint64    `json:"user_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether the half-open intervals [a.StartTime, a.EndTime)
// and [start, end) collide.  Two intervals [a,b) and [c,d) overlap iff
// a < d AND c < b, so back-to-back bookings that touch at a boundary are
// allowed.  Times compare correctly as strings because they are zero-padded
// "HH:MM" values.
func (r Reservation) Overlaps(start, end string) bool {
	return r.StartTime < end && start < r.EndTime
}
