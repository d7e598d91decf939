package dto

import (
	"time"

	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Name             string `json:"name" binding:"required,min=2,max=100"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	Role             string `json:"role" binding:"required,oneof=student mentor admin"`
	Course           string `json:"course,omitempty"`
	VerificationCode string `json:"verification_code,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SwitchRoleRequest represents a request to change the active role
type SwitchRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student mentor admin"`
}

// TokenPairResponse carries an access/refresh token pair
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponse is returned after register/login
type AuthResponse struct {
	User   *UserResponse      `json:"user"`
	Tokens *TokenPairResponse `json:"tokens"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	ActiveRole   string    `json:"active_role"`
	Course       string    `json:"course,omitempty"`
	SessionCount int       `json:"session_count"`
	SessionLimit int       `json:"session_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserFromDomain converts a domain User to UserResponse
func UserFromDomain(u *domain.User) *UserResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Roles:        roles,
		ActiveRole:   string(u.ActiveRole),
		Course:       u.Course,
		SessionCount: u.SessionCount,
		SessionLimit: u.SessionLimit,
		CreatedAt:    u.CreatedAt,
	}
}
