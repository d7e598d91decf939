package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/middleware"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/response"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SessionHandler handles session booking HTTP requests
type SessionHandler struct {
	bookingService service.BookingService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(bookingService service.BookingService) *SessionHandler {
	return &SessionHandler{bookingService: bookingService}
}

// Book handles POST /sessions
func (h *SessionHandler) Book(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	studentID := c.GetString(middleware.ContextKeyUserID)

	var req dto.BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("student_id", studentID),
		attribute.String("mentor_id", req.MentorID),
		attribute.String("slot_id", req.SlotID),
	)

	result, err := h.bookingService.BookSession(ctx, studentID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("session_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	sessionID := c.Param("id")
	if sessionID == "" {
		span.SetStatus(codes.Error, "session id required")
		response.BadRequest(c, "session id required")
		return
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("user_id", userID),
	)

	result, err := h.bookingService.GetSession(ctx, sessionID, userID, middleware.ActiveRole(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// List handles GET /sessions. The result set depends on the caller's
// active role: students see their bookings, mentors their teaching
// schedule, admins everything.
func (h *SessionHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	role := middleware.ActiveRole(c)

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("role", string(role)),
	)

	result, err := h.bookingService.ListSessions(ctx, userID, role)
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

// Cancel handles POST /sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	sessionID := c.Param("id")
	if sessionID == "" {
		span.SetStatus(codes.Error, "session id required")
		response.BadRequest(c, "session id required")
		return
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("user_id", userID),
	)

	result, err := h.bookingService.CancelSession(ctx, sessionID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Complete handles POST /sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.complete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mentorID := c.GetString(middleware.ContextKeyUserID)
	sessionID := c.Param("id")
	if sessionID == "" {
		span.SetStatus(codes.Error, "session id required")
		response.BadRequest(c, "session id required")
		return
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("mentor_id", mentorID),
	)

	result, err := h.bookingService.CompleteSession(ctx, sessionID, mentorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// NoShow handles POST /sessions/:id/no-show
func (h *SessionHandler) NoShow(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.no_show")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	mentorID := c.GetString(middleware.ContextKeyUserID)
	sessionID := c.Param("id")
	if sessionID == "" {
		span.SetStatus(codes.Error, "session id required")
		response.BadRequest(c, "session id required")
		return
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("mentor_id", mentorID),
	)

	result, err := h.bookingService.MarkNoShow(ctx, sessionID, mentorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
