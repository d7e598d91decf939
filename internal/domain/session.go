package domain

import (
	"time"
)

// SessionStatus represents the lifecycle state of a mentoring session
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusNoShow    SessionStatus = "no_show"
)

// Session is a booked mentoring session between one student and one
// mentor, occupying one availability slot.
type Session struct {
	ID          string        `json:"id"`
	SlotID      string        `json:"slot_id"`
	StudentID   string        `json:"student_id"`
	MentorID    string        `json:"mentor_id"`
	StudentName string        `json:"student_name"`
	MentorName  string        `json:"mentor_name"`
	Course      string        `json:"course,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      SessionStatus `json:"status"`
	MeetingLink string        `json:"meeting_link"`
	CancelledBy string        `json:"cancelled_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsParticipant reports whether the user is the student or the mentor
// of this session
func (s *Session) IsParticipant(userID string) bool {
	return s.StudentID == userID || s.MentorID == userID
}

// CanCancel reports whether the session may still be cancelled at the
// given time. The boundary is inclusive: cancelling exactly at
// start-window succeeds.
func (s *Session) CanCancel(now time.Time, window time.Duration) error {
	if s.Status != SessionStatusScheduled {
		return ErrSessionNotScheduled
	}
	deadline := s.StartTime.Add(-window)
	if now.After(deadline) {
		return ErrCancellationWindowClosed
	}
	return nil
}

// CanClose reports whether the session may be marked completed or
// no-show at the given time. Closing is only allowed once the session
// has ended.
func (s *Session) CanClose(now time.Time) error {
	if s.Status != SessionStatusScheduled {
		return ErrSessionNotScheduled
	}
	if now.Before(s.EndTime) {
		return ErrSessionNotEnded
	}
	return nil
}

// MeetingLinkFor derives the deterministic meeting link for a session
func MeetingLinkFor(base, sessionID string) string {
	return base + sessionID
}
