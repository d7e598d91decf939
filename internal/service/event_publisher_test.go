package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mu              sync.Mutex
	bookedEvents    []*domain.Session
	cancelledEvents []*domain.Session
	completedEvents []*domain.Session
	noShowEvents    []*domain.Session
	publishError    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		bookedEvents:    make([]*domain.Session, 0),
		cancelledEvents: make([]*domain.Session, 0),
		completedEvents: make([]*domain.Session, 0),
		noShowEvents:    make([]*domain.Session, 0),
	}
}

func (m *MockEventPublisher) PublishSessionBooked(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.bookedEvents = append(m.bookedEvents, session)
	return nil
}

func (m *MockEventPublisher) PublishSessionCancelled(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.cancelledEvents = append(m.cancelledEvents, session)
	return nil
}

func (m *MockEventPublisher) PublishSessionCompleted(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.completedEvents = append(m.completedEvents, session)
	return nil
}

func (m *MockEventPublisher) PublishSessionNoShow(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.noShowEvents = append(m.noShowEvents, session)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

func (m *MockEventPublisher) GetBookedEvents() []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookedEvents
}

func (m *MockEventPublisher) GetCancelledEvents() []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelledEvents
}

func TestNoOpEventPublisher(t *testing.T) {
	publisher := NewNoOpEventPublisher()
	ctx := context.Background()
	session := &domain.Session{
		ID:        "session-123",
		SlotID:    "slot-123",
		StudentID: "student-123",
		MentorID:  "mentor-123",
		Status:    domain.SessionStatusScheduled,
	}

	t.Run("PublishSessionBooked returns nil", func(t *testing.T) {
		if err := publisher.PublishSessionBooked(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("PublishSessionCancelled returns nil", func(t *testing.T) {
		if err := publisher.PublishSessionCancelled(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("PublishSessionCompleted returns nil", func(t *testing.T) {
		if err := publisher.PublishSessionCompleted(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("PublishSessionNoShow returns nil", func(t *testing.T) {
		if err := publisher.PublishSessionNoShow(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := publisher.Close(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}

func TestMockEventPublisher(t *testing.T) {
	ctx := context.Background()
	session := &domain.Session{
		ID:        "session-123",
		SlotID:    "slot-123",
		StudentID: "student-123",
		MentorID:  "mentor-123",
		Status:    domain.SessionStatusScheduled,
	}

	t.Run("PublishSessionBooked captures event", func(t *testing.T) {
		publisher := NewMockEventPublisher()
		if err := publisher.PublishSessionBooked(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		events := publisher.GetBookedEvents()
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].ID != session.ID {
			t.Errorf("expected session ID %s, got %s", session.ID, events[0].ID)
		}
	})

	t.Run("PublishSessionCancelled captures event", func(t *testing.T) {
		publisher := NewMockEventPublisher()
		if err := publisher.PublishSessionCancelled(ctx, session); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if len(publisher.GetCancelledEvents()) != 1 {
			t.Errorf("expected 1 event, got %d", len(publisher.GetCancelledEvents()))
		}
	})
}

func TestSessionEvent(t *testing.T) {
	now := time.Now()
	session := &domain.Session{
		ID:        "session-123",
		SlotID:    "slot-123",
		StudentID: "student-123",
		MentorID:  "mentor-123",
		Status:    domain.SessionStatusScheduled,
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(25 * time.Hour),
	}

	t.Run("NewSessionEvent creates event with correct data", func(t *testing.T) {
		event := domain.NewSessionEvent(domain.SessionEventBooked, session, "event-id-123")

		if event.EventID != "event-id-123" {
			t.Errorf("expected event ID 'event-id-123', got %s", event.EventID)
		}
		if event.EventType != domain.SessionEventBooked {
			t.Errorf("expected event type %s, got %s", domain.SessionEventBooked, event.EventType)
		}
		if event.SessionID != session.ID {
			t.Errorf("expected session ID %s, got %s", session.ID, event.SessionID)
		}
		if event.StudentID != session.StudentID {
			t.Errorf("expected student ID %s, got %s", session.StudentID, event.StudentID)
		}
		if event.Status != domain.SessionStatusScheduled {
			t.Errorf("expected status scheduled, got %s", event.Status)
		}
		if event.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	})

	t.Run("Event Key returns mentor ID", func(t *testing.T) {
		event := domain.NewSessionEvent(domain.SessionEventBooked, session, "event-id-123")
		if event.Key() != session.MentorID {
			t.Errorf("expected key %s, got %s", session.MentorID, event.Key())
		}
	})

	t.Run("Event types are correct", func(t *testing.T) {
		if string(domain.SessionEventBooked) != "session.booked" {
			t.Errorf("expected 'session.booked', got %s", domain.SessionEventBooked)
		}
		if string(domain.SessionEventCancelled) != "session.cancelled" {
			t.Errorf("expected 'session.cancelled', got %s", domain.SessionEventCancelled)
		}
		if string(domain.SessionEventCompleted) != "session.completed" {
			t.Errorf("expected 'session.completed', got %s", domain.SessionEventCompleted)
		}
		if string(domain.SessionEventNoShow) != "session.no_show" {
			t.Errorf("expected 'session.no_show', got %s", domain.SessionEventNoShow)
		}
	})
}
