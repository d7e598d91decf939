package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/metrics"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AvailabilityService defines the interface for slot management business logic
type AvailabilityService interface {
	// AddSlot publishes a new availability slot for a mentor
	AddSlot(ctx context.Context, mentorID string, req *dto.AddSlotRequest) (*dto.SlotResponse, error)

	// RemoveSlot withdraws an unbooked slot owned by the mentor
	RemoveSlot(ctx context.Context, slotID, mentorID string) error

	// ListOpenSlots lists a mentor's bookable slots
	ListOpenSlots(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*dto.SlotResponse, error)

	// ListMentors lists mentors with open slot counts, optionally
	// filtered by course
	ListMentors(ctx context.Context, course string) ([]*dto.MentorResponse, error)
}

// availabilityService implements AvailabilityService
type availabilityService struct {
	slotRepo repository.SlotRepository
	userRepo repository.UserRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(slotRepo repository.SlotRepository, userRepo repository.UserRepository) AvailabilityService {
	return &availabilityService{
		slotRepo: slotRepo,
		userRepo: userRepo,
	}
}

// AddSlot publishes a new availability slot for a mentor
func (s *availabilityService) AddSlot(ctx context.Context, mentorID string, req *dto.AddSlotRequest) (*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.add_slot")
	defer span.End()

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	now := time.Now()
	slot := &domain.AvailabilitySlot{
		ID:        uuid.New().String(),
		MentorID:  mentorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Booked:    false,
		CreatedAt: now,
	}

	if err := slot.Validate(now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.slotRepo.Add(ctx, slot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordSlotAdded(ctx, mentorID)

	span.SetAttributes(attribute.String("slot_id", slot.ID))
	span.SetStatus(codes.Ok, "")
	return dto.SlotFromDomain(slot), nil
}

// RemoveSlot withdraws an unbooked slot owned by the mentor
func (s *availabilityService) RemoveSlot(ctx context.Context, slotID, mentorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.remove_slot")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot_id", slotID),
		attribute.String("mentor_id", mentorID),
	)

	if err := s.slotRepo.Remove(ctx, slotID, mentorID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RecordSlotRemoved(ctx, mentorID)

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListOpenSlots lists a mentor's bookable slots
func (s *availabilityService) ListOpenSlots(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.list_open_slots")
	defer span.End()

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	// Verify the mentor exists and holds the mentor role
	mentor, err := s.userRepo.GetByID(ctx, mentorID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			span.SetStatus(codes.Error, "mentor not found")
			return nil, domain.ErrMentorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !mentor.HasRole(domain.RoleMentor) {
		span.SetStatus(codes.Error, "mentor not found")
		return nil, domain.ErrMentorNotFound
	}

	slots, err := s.slotRepo.ListOpenByMentor(ctx, mentorID, after, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return dto.SlotsFromDomain(slots), nil
}

// ListMentors lists mentors with open slot counts
func (s *availabilityService) ListMentors(ctx context.Context, course string) ([]*dto.MentorResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.list_mentors")
	defer span.End()

	mentors, err := s.userRepo.ListMentors(ctx, course)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.MentorResponse, 0, len(mentors))
	for _, m := range mentors {
		responses = append(responses, &dto.MentorResponse{
			ID:             m.ID,
			Name:           m.Name,
			Course:         m.Course,
			AvailableSlots: m.AvailableSlots,
		})
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}
