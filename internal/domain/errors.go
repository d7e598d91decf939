package domain

import "errors"

// Domain errors
var (
	// Slot errors
	ErrInvalidSlotRange = errors.New("slot end time must be after start time")
	ErrSlotInPast       = errors.New("slot start time is in the past")
	ErrSlotOverlap      = errors.New("slot overlaps an existing slot")
	ErrSlotNotFound     = errors.New("availability slot not found")
	ErrSlotBooked       = errors.New("slot is already booked")
	ErrSlotUnavailable  = errors.New("slot is no longer available")

	// Session errors
	ErrSessionLimitReached      = errors.New("session limit reached")
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionNotScheduled      = errors.New("session is not in scheduled state")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrSessionNotEnded          = errors.New("session has not ended yet")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrMentorNotFound    = errors.New("mentor not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// Auth errors
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token has expired")
	ErrAuthSessionNotFound     = errors.New("auth session not found")
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// Permission errors
	ErrRoleNotGranted = errors.New("role not granted to this user")
	ErrNotParticipant = errors.New("user is not a participant of this session")
	ErrMentorOnly     = errors.New("operation requires the mentor role")
	ErrStudentOnly    = errors.New("operation requires the student role")
	ErrAdminOnly      = errors.New("operation requires the admin role")

	// Validation errors
	ErrInvalidSessionLimit = errors.New("session limit must be a positive integer")
	ErrCourseRequired      = errors.New("course is required for students")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidTimeRange    = errors.New("invalid time range")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrMentorNotFound) ||
		errors.Is(err, ErrAuthSessionNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidSlotRange) ||
		errors.Is(err, ErrSlotInPast) ||
		errors.Is(err, ErrInvalidSessionLimit) ||
		errors.Is(err, ErrCourseRequired) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidVerificationCode)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotOverlap) ||
		errors.Is(err, ErrSlotBooked) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSessionLimitReached) ||
		errors.Is(err, ErrSessionNotScheduled) ||
		errors.Is(err, ErrCancellationWindowClosed) ||
		errors.Is(err, ErrSessionNotEnded) ||
		errors.Is(err, ErrUserAlreadyExists)
}

// IsPermissionError checks if the error is a permission error
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrRoleNotGranted) ||
		errors.Is(err, ErrNotParticipant) ||
		errors.Is(err, ErrMentorOnly) ||
		errors.Is(err, ErrStudentOnly) ||
		errors.Is(err, ErrAdminOnly)
}

// IsAuthError checks if the error should map to 401
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrAuthSessionNotFound)
}
