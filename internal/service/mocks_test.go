package service

import (
	"context"
	"sync"
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *domain.User) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*domain.User, error)
	UpdateActiveRoleFunc   func(ctx context.Context, id string, role domain.Role) error
	UpdateSessionLimitFunc func(ctx context.Context, id string, limit int) error
	ListByRoleFunc         func(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error)
	ListMentorsFunc        func(ctx context.Context, course string) ([]*repository.MentorSummary, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) UpdateActiveRole(ctx context.Context, id string, role domain.Role) error {
	if m.UpdateActiveRoleFunc != nil {
		return m.UpdateActiveRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *MockUserRepository) UpdateSessionLimit(ctx context.Context, id string, limit int) error {
	if m.UpdateSessionLimitFunc != nil {
		return m.UpdateSessionLimitFunc(ctx, id, limit)
	}
	return nil
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error) {
	if m.ListByRoleFunc != nil {
		return m.ListByRoleFunc(ctx, role, limit, offset)
	}
	return []*domain.User{}, nil
}

func (m *MockUserRepository) ListMentors(ctx context.Context, course string) ([]*repository.MentorSummary, error) {
	if m.ListMentorsFunc != nil {
		return m.ListMentorsFunc(ctx, course)
	}
	return []*repository.MentorSummary{}, nil
}

// MockAuthSessionRepository is a mock implementation of repository.AuthSessionRepository
type MockAuthSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*repository.AuthSession

	CreateFunc         func(ctx context.Context, session *repository.AuthSession) error
	GetByTokenHashFunc func(ctx context.Context, tokenHash string) (*repository.AuthSession, error)
	DeleteFunc         func(ctx context.Context, id string) error
	DeleteByUserIDFunc func(ctx context.Context, userID string) error
}

// NewMockAuthSessionRepository creates an in-memory mock that actually
// stores sessions, so token flows can be tested end to end
func NewMockAuthSessionRepository() *MockAuthSessionRepository {
	return &MockAuthSessionRepository{sessions: make(map[string]*repository.AuthSession)}
}

func (m *MockAuthSessionRepository) Create(ctx context.Context, session *repository.AuthSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.TokenHash] = session
	return nil
}

func (m *MockAuthSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*repository.AuthSession, error) {
	if m.GetByTokenHashFunc != nil {
		return m.GetByTokenHashFunc(ctx, tokenHash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tokenHash]; ok {
		return s, nil
	}
	return nil, domain.ErrAuthSessionNotFound
}

func (m *MockAuthSessionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.sessions {
		if s.ID == id {
			delete(m.sessions, hash)
			return nil
		}
	}
	return domain.ErrAuthSessionNotFound
}

func (m *MockAuthSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

// MockSlotRepository is a mock implementation of repository.SlotRepository
type MockSlotRepository struct {
	AddFunc              func(ctx context.Context, slot *domain.AvailabilitySlot) error
	RemoveFunc           func(ctx context.Context, slotID, mentorID string) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	ListOpenByMentorFunc func(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*domain.AvailabilitySlot, error)
	ListByMentorFunc     func(ctx context.Context, mentorID string) ([]*domain.AvailabilitySlot, error)
}

func (m *MockSlotRepository) Add(ctx context.Context, slot *domain.AvailabilitySlot) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, slot)
	}
	return nil
}

func (m *MockSlotRepository) Remove(ctx context.Context, slotID, mentorID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, slotID, mentorID)
	}
	return nil
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSlotNotFound
}

func (m *MockSlotRepository) ListOpenByMentor(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*domain.AvailabilitySlot, error) {
	if m.ListOpenByMentorFunc != nil {
		return m.ListOpenByMentorFunc(ctx, mentorID, after, day)
	}
	return []*domain.AvailabilitySlot{}, nil
}

func (m *MockSlotRepository) ListByMentor(ctx context.Context, mentorID string) ([]*domain.AvailabilitySlot, error) {
	if m.ListByMentorFunc != nil {
		return m.ListByMentorFunc(ctx, mentorID)
	}
	return []*domain.AvailabilitySlot{}, nil
}

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	BookFunc          func(ctx context.Context, params *repository.BookParams) (*domain.Session, error)
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Session, error)
	CancelFunc        func(ctx context.Context, sessionID, cancelledBy string) error
	CloseFunc         func(ctx context.Context, sessionID string, status domain.SessionStatus) error
	ListByStudentFunc func(ctx context.Context, studentID string) ([]*domain.Session, error)
	ListByMentorFunc  func(ctx context.Context, mentorID string) ([]*domain.Session, error)
	ListAllFunc       func(ctx context.Context, limit, offset int) ([]*domain.Session, error)
	StatsFunc         func(ctx context.Context) (*repository.PlatformStats, error)
}

func (m *MockSessionRepository) Book(ctx context.Context, params *repository.BookParams) (*domain.Session, error) {
	if m.BookFunc != nil {
		return m.BookFunc(ctx, params)
	}
	return nil, domain.ErrSlotUnavailable
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Cancel(ctx context.Context, sessionID, cancelledBy string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, sessionID, cancelledBy)
	}
	return nil
}

func (m *MockSessionRepository) Close(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, sessionID, status)
	}
	return nil
}

func (m *MockSessionRepository) ListByStudent(ctx context.Context, studentID string) ([]*domain.Session, error) {
	if m.ListByStudentFunc != nil {
		return m.ListByStudentFunc(ctx, studentID)
	}
	return []*domain.Session{}, nil
}

func (m *MockSessionRepository) ListByMentor(ctx context.Context, mentorID string) ([]*domain.Session, error) {
	if m.ListByMentorFunc != nil {
		return m.ListByMentorFunc(ctx, mentorID)
	}
	return []*domain.Session{}, nil
}

func (m *MockSessionRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Session, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, limit, offset)
	}
	return []*domain.Session{}, nil
}

func (m *MockSessionRepository) Stats(ctx context.Context) (*repository.PlatformStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &repository.PlatformStats{}, nil
}

// Compile-time interface checks for the mocks
var (
	_ repository.UserRepository        = (*MockUserRepository)(nil)
	_ repository.AuthSessionRepository = (*MockAuthSessionRepository)(nil)
	_ repository.SlotRepository        = (*MockSlotRepository)(nil)
	_ repository.SessionRepository     = (*MockSessionRepository)(nil)
)
