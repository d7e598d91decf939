package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/middleware"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/response"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AvailabilityHandler handles mentor availability HTTP requests
type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(availabilityService service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// AddSlot handles POST /mentors/me/slots
func (h *AvailabilityHandler) AddSlot(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.availability.add_slot")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mentorID := c.GetString(middleware.ContextKeyUserID)

	var req dto.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("mentor_id", mentorID),
		attribute.String("start_time", req.StartTime.Format(time.RFC3339)),
		attribute.String("end_time", req.EndTime.Format(time.RFC3339)),
	)

	result, err := h.availabilityService.AddSlot(ctx, mentorID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("slot_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// RemoveSlot handles DELETE /mentors/me/slots/:id
func (h *AvailabilityHandler) RemoveSlot(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.availability.remove_slot")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mentorID := c.GetString(middleware.ContextKeyUserID)
	slotID := c.Param("id")
	if slotID == "" {
		span.SetStatus(codes.Error, "slot id required")
		response.BadRequest(c, "slot id required")
		return
	}

	span.SetAttributes(
		attribute.String("mentor_id", mentorID),
		attribute.String("slot_id", slotID),
	)

	if err := h.availabilityService.RemoveSlot(ctx, slotID, mentorID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"removed": true})
}

// ListMentors handles GET /mentors
func (h *AvailabilityHandler) ListMentors(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.availability.list_mentors")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	course := c.Query("course")
	span.SetAttributes(attribute.String("course", course))

	result, err := h.availabilityService.ListMentors(ctx, course)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListSlots handles GET /mentors/:id/slots
// Optional query parameters: after (RFC3339) and date (YYYY-MM-DD)
func (h *AvailabilityHandler) ListSlots(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.availability.list_slots")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mentorID := c.Param("id")
	if mentorID == "" {
		span.SetStatus(codes.Error, "mentor id required")
		response.BadRequest(c, "mentor id required")
		return
	}

	var after, day *time.Time
	if a := c.Query("after"); a != "" {
		t, err := time.Parse(time.RFC3339, a)
		if err != nil {
			span.SetStatus(codes.Error, "invalid after parameter")
			response.BadRequest(c, "after must be an RFC3339 timestamp")
			return
		}
		after = &t
	}
	if d := c.Query("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			span.SetStatus(codes.Error, "invalid date parameter")
			response.BadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = &t
	}

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	result, err := h.availabilityService.ListOpenSlots(ctx, mentorID, after, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
