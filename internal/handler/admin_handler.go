package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/response"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_users")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	role := domain.Role(c.Query("role"))

	limit := 50
	offset := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}
	if o := c.Query("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil {
			offset = n
		}
	}

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	result, err := h.adminService.ListUsers(ctx, role, limit, offset)
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

// UpdateSessionLimit handles PUT /admin/users/:id/session-limit
func (h *AdminHandler) UpdateSessionLimit(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.update_session_limit")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("id")
	if userID == "" {
		span.SetStatus(codes.Error, "user id required")
		response.BadRequest(c, "user id required")
		return
	}

	var req dto.UpdateSessionLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("session_limit", *req.SessionLimit),
	)

	result, err := h.adminService.UpdateSessionLimit(ctx, userID, *req.SessionLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.stats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.adminService.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
