package domain

import (
	"time"
)

// Role is a capability a user holds. A user may hold several roles and
// acts under exactly one of them at a time (the active role).
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether r is a known role
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	ActiveRole   Role      `json:"active_role"`
	Course       string    `json:"course,omitempty"`
	SessionCount int       `json:"session_count"`
	SessionLimit int       `json:"session_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(r Role) bool {
	for _, role := range u.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// CanBook reports whether the user has booking quota remaining
func (u *User) CanBook() bool {
	return u.SessionCount < u.SessionLimit
}

// RemainingSessions returns the remaining booking quota, never negative
func (u *User) RemainingSessions() int {
	remaining := u.SessionLimit - u.SessionCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GrantedRoles returns the role set a new user receives when signing up
// under the given primary role. Mentors and admins can also act as
// students, so they get the student role too.
func GrantedRoles(primary Role) []Role {
	switch primary {
	case RoleStudent:
		return []Role{RoleStudent}
	case RoleMentor:
		return []Role{RoleMentor, RoleStudent}
	case RoleAdmin:
		return []Role{RoleAdmin, RoleStudent}
	}
	return nil
}
