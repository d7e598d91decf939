package repository

import (
	"context"
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateActiveRole sets the user's active role
	UpdateActiveRole(ctx context.Context, id string, role domain.Role) error

	// UpdateSessionLimit sets the user's booking quota
	UpdateSessionLimit(ctx context.Context, id string, limit int) error

	// ListByRole lists users holding the given role; empty role lists all
	ListByRole(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error)

	// ListMentors lists mentors with their open slot counts, optionally
	// filtered by course
	ListMentors(ctx context.Context, course string) ([]*MentorSummary, error)
}

// MentorSummary is a mentor row in the browse listing
type MentorSummary struct {
	ID             string
	Name           string
	Course         string
	AvailableSlots int
}

// AuthSessionRepository defines persistence for refresh token sessions
type AuthSessionRepository interface {
	// Create stores a new auth session
	Create(ctx context.Context, session *AuthSession) error

	// GetByTokenHash retrieves an auth session by refresh token hash
	GetByTokenHash(ctx context.Context, tokenHash string) (*AuthSession, error)

	// Delete removes an auth session by ID
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all auth sessions of a user
	DeleteByUserID(ctx context.Context, userID string) error
}

// AuthSession is a server-side record of an issued refresh token
type AuthSession struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SlotRepository defines persistence operations for availability slots
type SlotRepository interface {
	// Add inserts a slot after verifying it does not overlap an
	// existing slot of the same mentor
	Add(ctx context.Context, slot *domain.AvailabilitySlot) error

	// Remove deletes an unbooked slot owned by the mentor
	Remove(ctx context.Context, slotID, mentorID string) error

	// GetByID retrieves a slot by ID
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)

	// ListOpenByMentor lists unbooked slots of a mentor, optionally
	// filtered to those starting after a given time or on a given day
	ListOpenByMentor(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*domain.AvailabilitySlot, error)

	// ListByMentor lists all slots of a mentor, booked or not
	ListByMentor(ctx context.Context, mentorID string) ([]*domain.AvailabilitySlot, error)
}

// SessionRepository defines persistence operations for sessions
type SessionRepository interface {
	// Book atomically claims the slot, consumes one unit of the
	// student's quota and creates the session record
	Book(ctx context.Context, params *BookParams) (*domain.Session, error)

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id string) (*domain.Session, error)

	// Cancel atomically marks a scheduled session cancelled and
	// releases its slot
	Cancel(ctx context.Context, sessionID, cancelledBy string) error

	// Close transitions a scheduled session to completed or no_show
	Close(ctx context.Context, sessionID string, status domain.SessionStatus) error

	// ListByStudent lists a student's sessions, newest first
	ListByStudent(ctx context.Context, studentID string) ([]*domain.Session, error)

	// ListByMentor lists a mentor's sessions, newest first
	ListByMentor(ctx context.Context, mentorID string) ([]*domain.Session, error)

	// ListAll lists all sessions, newest first
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Session, error)

	// Stats returns platform-wide counters for the admin dashboard
	Stats(ctx context.Context) (*PlatformStats, error)
}

// BookParams carries the inputs of an atomic booking
type BookParams struct {
	StudentID       string
	MentorID        string
	SlotID          string
	MeetingLinkBase string
}

// PlatformStats is the admin dashboard aggregate
type PlatformStats struct {
	TotalUsers        int64
	TotalStudents     int64
	TotalMentors      int64
	TotalSessions     int64
	ScheduledSessions int64
	CancelledSessions int64
	CompletedSessions int64
	NoShowSessions    int64
	OpenSlots         int64
}
