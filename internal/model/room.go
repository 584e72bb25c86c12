package model

import "time"

// Room represents a bookable space in the coworking inventory as stored in
// the `rooms` table.  Resources is a free-text description of amenities
// (projector, whiteboard, ...) and may be empty.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – non-empty display label.
//	Capacity  – occupant limit, always positive.
//	Resources – optional amenity description.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Capacity  uint32    `json:"capacity"`
	Resources string    `json:"resources"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
