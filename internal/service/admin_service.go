package service

import (
	"context"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AdminService defines the interface for admin operations
type AdminService interface {
	// ListUsers lists users, optionally filtered by role
	ListUsers(ctx context.Context, role domain.Role, limit, offset int) ([]*dto.UserResponse, error)

	// UpdateSessionLimit overrides a student's booking quota
	UpdateSessionLimit(ctx context.Context, userID string, limit int) (*dto.UserResponse, error)

	// Stats returns the platform dashboard summary
	Stats(ctx context.Context) (*dto.PlatformStatsResponse, error)
}

// adminService implements AdminService
type adminService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) AdminService {
	return &adminService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// ListUsers lists users, optionally filtered by role
func (s *adminService) ListUsers(ctx context.Context, role domain.Role, limit, offset int) ([]*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.list_users")
	defer span.End()

	if role != "" && !domain.ValidRole(role) {
		span.SetStatus(codes.Error, "invalid role")
		return nil, domain.ErrInvalidRole
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	users, err := s.userRepo.ListByRole(ctx, role, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, dto.UserFromDomain(u))
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// UpdateSessionLimit overrides a student's booking quota. The limit is
// a positive integer; it may be below the student's current usage, which
// only blocks further bookings, it never unwinds existing ones.
func (s *adminService) UpdateSessionLimit(ctx context.Context, userID string, limit int) (*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.update_session_limit")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("session_limit", limit),
	)

	if limit < 1 {
		span.SetStatus(codes.Error, "invalid limit")
		return nil, domain.ErrInvalidSessionLimit
	}

	if err := s.userRepo.UpdateSessionLimit(ctx, userID, limit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.UserFromDomain(user), nil
}

// Stats returns the platform dashboard summary
func (s *adminService) Stats(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.stats")
	defer span.End()

	stats, err := s.sessionRepo.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.PlatformStatsResponse{
		TotalUsers:        stats.TotalUsers,
		TotalStudents:     stats.TotalStudents,
		TotalMentors:      stats.TotalMentors,
		TotalSessions:     stats.TotalSessions,
		ScheduledSessions: stats.ScheduledSessions,
		CancelledSessions: stats.CancelledSessions,
		CompletedSessions: stats.CompletedSessions,
		NoShowSessions:    stats.NoShowSessions,
		OpenSlots:         stats.OpenSlots,
	}, nil
}
