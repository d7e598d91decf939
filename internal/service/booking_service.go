package service

import (
	"context"
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/metrics"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
	"github.com/masai-connect/mentor-booking-api/pkg/logger"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BookingService defines the interface for session booking business logic
type BookingService interface {
	// BookSession books an open slot for a student
	BookSession(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error)

	// GetSession retrieves a session visible to the caller
	GetSession(ctx context.Context, sessionID, userID string, role domain.Role) (*dto.SessionResponse, error)

	// ListSessions lists the caller's sessions according to their active role
	ListSessions(ctx context.Context, userID string, role domain.Role) ([]*dto.SessionResponse, error)

	// CancelSession cancels a scheduled session and releases its slot
	CancelSession(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error)

	// CompleteSession marks an ended session as completed (mentor only)
	CompleteSession(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error)

	// MarkNoShow marks an ended session as a no-show (mentor only)
	MarkNoShow(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error)
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	CancellationWindow time.Duration
	MeetingLinkBase    string
}

// bookingService implements BookingService
type bookingService struct {
	sessionRepo        repository.SessionRepository
	eventPublisher     EventPublisher
	cancellationWindow time.Duration
	meetingLinkBase    string
}

// NewBookingService creates a new booking service
func NewBookingService(
	sessionRepo repository.SessionRepository,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	window := 5 * time.Hour
	linkBase := "https://meet.jit.si/masai-session-"
	if cfg != nil {
		if cfg.CancellationWindow > 0 {
			window = cfg.CancellationWindow
		}
		if cfg.MeetingLinkBase != "" {
			linkBase = cfg.MeetingLinkBase
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		sessionRepo:        sessionRepo,
		eventPublisher:     eventPublisher,
		cancellationWindow: window,
		meetingLinkBase:    linkBase,
	}
}

// BookSession books an open slot for a student
func (s *bookingService) BookSession(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.book_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("student_id", studentID),
		attribute.String("mentor_id", req.MentorID),
		attribute.String("slot_id", req.SlotID),
	)

	session, err := s.sessionRepo.Book(ctx, &repository.BookParams{
		StudentID:       studentID,
		MentorID:        req.MentorID,
		SlotID:          req.SlotID,
		MeetingLinkBase: s.meetingLinkBase,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordBookingFailure(ctx, failureReason(err))
		return nil, err
	}

	s.publishAsync(domain.SessionEventBooked, session)

	metrics.RecordBooking(ctx, session.MentorID)

	span.AddEvent("session_booked", trace.WithAttributes(
		attribute.String("session_id", session.ID),
		attribute.String("slot_id", session.SlotID),
	))

	span.SetAttributes(attribute.String("session_id", session.ID))
	span.SetStatus(codes.Ok, "")
	return dto.SessionFromDomain(session), nil
}

// GetSession retrieves a session visible to the caller. Participants
// and admins may view a session.
func (s *bookingService) GetSession(ctx context.Context, sessionID, userID string, role domain.Role) (*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_session")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if role != domain.RoleAdmin && !session.IsParticipant(userID) {
		span.SetStatus(codes.Error, "not a participant")
		return nil, domain.ErrNotParticipant
	}

	span.SetStatus(codes.Ok, "")
	return dto.SessionFromDomain(session), nil
}

// ListSessions lists the caller's sessions according to their active role
func (s *bookingService) ListSessions(ctx context.Context, userID string, role domain.Role) ([]*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_sessions")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("role", string(role)),
	)

	var sessions []*domain.Session
	var err error
	switch role {
	case domain.RoleMentor:
		sessions, err = s.sessionRepo.ListByMentor(ctx, userID)
	case domain.RoleAdmin:
		sessions, err = s.sessionRepo.ListAll(ctx, 100, 0)
	default:
		sessions, err = s.sessionRepo.ListByStudent(ctx, userID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(sessions)))
	span.SetStatus(codes.Ok, "")
	return dto.SessionsFromDomain(sessions), nil
}

// CancelSession cancels a scheduled session and releases its slot.
// Either participant may cancel, up until the cancellation window
// closes before the start time.
func (s *bookingService) CancelSession(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("user_id", userID),
	)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !session.IsParticipant(userID) {
		span.SetStatus(codes.Error, "not a participant")
		return nil, domain.ErrNotParticipant
	}

	if err := session.CanCancel(time.Now(), s.cancellationWindow); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.sessionRepo.Cancel(ctx, sessionID, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	session.Status = domain.SessionStatusCancelled
	session.CancelledBy = userID

	s.publishAsync(domain.SessionEventCancelled, session)

	cancelledByRole := "student"
	if userID == session.MentorID {
		cancelledByRole = "mentor"
	}
	metrics.RecordCancellation(ctx, cancelledByRole)

	span.SetStatus(codes.Ok, "")
	return dto.SessionFromDomain(session), nil
}

// CompleteSession marks an ended session as completed (mentor only)
func (s *bookingService) CompleteSession(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
	return s.closeSession(ctx, sessionID, mentorID, domain.SessionStatusCompleted)
}

// MarkNoShow marks an ended session as a no-show (mentor only)
func (s *bookingService) MarkNoShow(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
	return s.closeSession(ctx, sessionID, mentorID, domain.SessionStatusNoShow)
}

func (s *bookingService) closeSession(ctx context.Context, sessionID, mentorID string, status domain.SessionStatus) (*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.close_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("mentor_id", mentorID),
		attribute.String("status", string(status)),
	)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if session.MentorID != mentorID {
		span.SetStatus(codes.Error, "mentor only")
		return nil, domain.ErrMentorOnly
	}

	if err := session.CanClose(time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.sessionRepo.Close(ctx, sessionID, status); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	session.Status = status

	if status == domain.SessionStatusCompleted {
		s.publishAsync(domain.SessionEventCompleted, session)
	} else {
		s.publishAsync(domain.SessionEventNoShow, session)
	}
	metrics.RecordClosure(ctx, status == domain.SessionStatusCompleted)

	span.SetStatus(codes.Ok, "")
	return dto.SessionFromDomain(session), nil
}

// publishAsync publishes a lifecycle event without blocking the request
func (s *bookingService) publishAsync(eventType domain.SessionEventType, session *domain.Session) {
	go func() {
		var err error
		switch eventType {
		case domain.SessionEventBooked:
			err = s.eventPublisher.PublishSessionBooked(context.Background(), session)
		case domain.SessionEventCancelled:
			err = s.eventPublisher.PublishSessionCancelled(context.Background(), session)
		case domain.SessionEventCompleted:
			err = s.eventPublisher.PublishSessionCompleted(context.Background(), session)
		case domain.SessionEventNoShow:
			err = s.eventPublisher.PublishSessionNoShow(context.Background(), session)
		}
		if err != nil {
			logger.Get().Warn("failed to publish session event",
				zap.String("event_type", string(eventType)),
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}()
}

func failureReason(err error) string {
	switch err {
	case domain.ErrSlotUnavailable:
		return "slot_unavailable"
	case domain.ErrSlotNotFound:
		return "slot_not_found"
	case domain.ErrSessionLimitReached:
		return "limit_reached"
	case domain.ErrUserNotFound:
		return "user_not_found"
	default:
		return "internal"
	}
}
