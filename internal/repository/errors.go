// Package repository defines the data access layer along with the sentinel
// error values shared by its repositories.  Handlers compare against these
// sentinels to pick the HTTP status for a failure: not-found errors map to
// 404, conflicts to 409 and forbidden to 403.  Anything else is treated as a
// store failure and reported as a generic internal error.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup or update targets an id
// that does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation lookup or delete
// targets an id that does not exist.  A repeated cancel of the same
// reservation surfaces this rather than succeeding silently; "already gone"
// is a legitimate failure to report.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrRoomInUse is returned when a room cannot be deleted because
// reservations still reference it.  Handlers translate this into 409.
var ErrRoomInUse = errors.New("room has reservations")

// ErrTimeConflict is returned when a candidate reservation's interval
// overlaps an existing reservation for the same room and date.
var ErrTimeConflict = errors.New("time slot already booked")

// ErrEmailExists is returned when registering an account with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")
