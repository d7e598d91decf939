package domain

import (
	"time"
)

// SessionEventType identifies a session lifecycle event
type SessionEventType string

const (
	SessionEventBooked    SessionEventType = "session.booked"
	SessionEventCancelled SessionEventType = "session.cancelled"
	SessionEventCompleted SessionEventType = "session.completed"
	SessionEventNoShow    SessionEventType = "session.no_show"
)

// SessionEvent is published to the event stream on each session
// lifecycle transition
type SessionEvent struct {
	EventID   string           `json:"event_id"`
	EventType SessionEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`

	SessionID string        `json:"session_id"`
	SlotID    string        `json:"slot_id"`
	StudentID string        `json:"student_id"`
	MentorID  string        `json:"mentor_id"`
	Status    SessionStatus `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

// NewSessionEvent builds an event from a session snapshot
func NewSessionEvent(eventType SessionEventType, session *Session, eventID string) *SessionEvent {
	return &SessionEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		SessionID: session.ID,
		SlotID:    session.SlotID,
		StudentID: session.StudentID,
		MentorID:  session.MentorID,
		Status:    session.Status,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}
}

// Key returns the partition key. Events for the same mentor stay
// ordered on one partition.
func (e *SessionEvent) Key() string {
	return e.MentorID
}
