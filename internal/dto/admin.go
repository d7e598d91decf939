package dto

// UpdateSessionLimitRequest represents an admin overriding a student's
// booking quota
type UpdateSessionLimitRequest struct {
	SessionLimit *int `json:"session_limit" binding:"required"`
}

// PlatformStatsResponse is the admin dashboard summary
type PlatformStatsResponse struct {
	TotalUsers        int64 `json:"total_users"`
	TotalStudents     int64 `json:"total_students"`
	TotalMentors      int64 `json:"total_mentors"`
	TotalSessions     int64 `json:"total_sessions"`
	ScheduledSessions int64 `json:"scheduled_sessions"`
	CancelledSessions int64 `json:"cancelled_sessions"`
	CompletedSessions int64 `json:"completed_sessions"`
	NoShowSessions    int64 `json:"no_show_sessions"`
	OpenSlots         int64 `json:"open_slots"`
}
