package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationOverlaps(t *testing.T) {
	existing := Reservation{StartTime: "09:00", EndTime: "10:00"}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical interval", "09:00", "10:00", true},
		{"contained inside", "09:15", "09:45", true},
		{"straddles start", "08:30", "09:30", true},
		{"straddles end", "09:30", "10:30", true},
		{"covers completely", "08:00", "11:00", true},
		{"touches at end boundary", "10:00", "11:00", false},
		{"touches at start boundary", "08:00", "09:00", false},
		{"well before", "07:00", "08:00", false},
		{"well after", "11:00", "12:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, existing.Overlaps(tc.start, tc.end))
		})
	}
}
