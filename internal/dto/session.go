package dto

import (
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// BookSessionRequest represents a student booking a slot
type BookSessionRequest struct {
	MentorID string `json:"mentor_id" binding:"required"`
	SlotID   string `json:"slot_id" binding:"required"`
}

// SessionResponse represents a session in API responses
type SessionResponse struct {
	ID          string     `json:"id"`
	SlotID      string     `json:"slot_id"`
	StudentID   string     `json:"student_id"`
	MentorID    string     `json:"mentor_id"`
	StudentName string     `json:"student_name"`
	MentorName  string     `json:"mentor_name"`
	Course      string     `json:"course,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	MeetingLink string     `json:"meeting_link"`
	CancelledBy string     `json:"cancelled_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionFromDomain converts a domain Session to SessionResponse
func SessionFromDomain(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:          s.ID,
		SlotID:      s.SlotID,
		StudentID:   s.StudentID,
		MentorID:    s.MentorID,
		StudentName: s.StudentName,
		MentorName:  s.MentorName,
		Course:      s.Course,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Status:      string(s.Status),
		MeetingLink: s.MeetingLink,
		CancelledBy: s.CancelledBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionsFromDomain converts a slice of domain sessions
func SessionsFromDomain(sessions []*domain.Session) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionFromDomain(s))
	}
	return out
}
