package domain

import (
	"time"
)

// AvailabilitySlot is a window of time a mentor has published for
// booking. A slot is booked by at most one session.
type AvailabilitySlot struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentor_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Booked    bool      `json:"booked"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks slot invariants against the given current time
func (s *AvailabilitySlot) Validate(now time.Time) error {
	if !s.EndTime.After(s.StartTime) {
		return ErrInvalidSlotRange
	}
	if s.StartTime.Before(now) {
		return ErrSlotInPast
	}
	return nil
}

// Overlaps reports whether two half-open intervals [start, end) intersect.
// Back-to-back slots (one ending exactly when the other starts) do not
// overlap.
func (s *AvailabilitySlot) Overlaps(other *AvailabilitySlot) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}
