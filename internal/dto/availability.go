package dto

import (
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// AddSlotRequest represents a mentor publishing a new availability slot
type AddSlotRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// SlotResponse represents an availability slot in API responses
type SlotResponse struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentor_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Booked    bool      `json:"booked"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotFromDomain converts a domain AvailabilitySlot to SlotResponse
func SlotFromDomain(s *domain.AvailabilitySlot) *SlotResponse {
	return &SlotResponse{
		ID:        s.ID,
		MentorID:  s.MentorID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Booked:    s.Booked,
		CreatedAt: s.CreatedAt,
	}
}

// SlotsFromDomain converts a slice of domain slots
func SlotsFromDomain(slots []*domain.AvailabilitySlot) []*SlotResponse {
	out := make([]*SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotFromDomain(s))
	}
	return out
}

// MentorResponse represents a mentor in the browse listing
type MentorResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Course         string `json:"course,omitempty"`
	AvailableSlots int    `json:"available_slots"`
}
