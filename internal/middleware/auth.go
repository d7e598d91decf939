package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/response"
)

// Context keys set by Auth for downstream handlers
const (
	ContextKeyUserID     = "user_id"
	ContextKeyActiveRole = "active_role"
	ContextKeyRoles      = "roles"
)

// Auth validates the bearer token and sets user claims in the gin context
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewError("MISSING_TOKEN", "Authorization header is required"))
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) || len(authHeader) == len(bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewError("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}
		token := authHeader[len(bearerPrefix):]

		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			code := "INVALID_TOKEN"
			if err == domain.ErrTokenExpired {
				code = "TOKEN_EXPIRED"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewError(code, "Invalid or expired token"))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyActiveRole, claims.ActiveRole)
		c.Set(ContextKeyRoles, claims.Roles)
		c.Next()
	}
}

// RequireRole restricts access to callers whose active role matches one
// of the given roles. Must run after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, exists := c.Get(ContextKeyActiveRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewError("UNAUTHORIZED", "User role not found in context"))
			return
		}

		activeRole := domain.Role(active.(string))
		for _, r := range roles {
			if activeRole == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			response.NewError("FORBIDDEN", "Active role is not allowed to access this resource"))
	}
}

// ActiveRole returns the caller's active role from the gin context
func ActiveRole(c *gin.Context) domain.Role {
	return domain.Role(c.GetString(ContextKeyActiveRole))
}
