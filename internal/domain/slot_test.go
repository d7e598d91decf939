package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilitySlot_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{
			name:  "valid future slot",
			start: now.Add(time.Hour),
			end:   now.Add(2 * time.Hour),
		},
		{
			name:    "end before start",
			start:   now.Add(2 * time.Hour),
			end:     now.Add(time.Hour),
			wantErr: ErrInvalidSlotRange,
		},
		{
			name:    "zero-length slot",
			start:   now.Add(time.Hour),
			end:     now.Add(time.Hour),
			wantErr: ErrInvalidSlotRange,
		},
		{
			name:    "start in the past",
			start:   now.Add(-time.Minute),
			end:     now.Add(time.Hour),
			wantErr: ErrSlotInPast,
		},
		{
			name:  "start exactly now",
			start: now,
			end:   now.Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &AvailabilitySlot{StartTime: tt.start, EndTime: tt.end}
			err := s.Validate(now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAvailabilitySlot_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	slot := func(startOffset, endOffset time.Duration) *AvailabilitySlot {
		return &AvailabilitySlot{StartTime: base.Add(startOffset), EndTime: base.Add(endOffset)}
	}

	a := slot(0, time.Hour)

	assert.True(t, a.Overlaps(slot(30*time.Minute, 90*time.Minute)), "partial overlap")
	assert.True(t, a.Overlaps(slot(-30*time.Minute, 30*time.Minute)), "partial overlap from before")
	assert.True(t, a.Overlaps(slot(-time.Hour, 2*time.Hour)), "containing slot")
	assert.True(t, a.Overlaps(slot(15*time.Minute, 45*time.Minute)), "contained slot")
	assert.False(t, a.Overlaps(slot(time.Hour, 2*time.Hour)), "back-to-back after")
	assert.False(t, a.Overlaps(slot(-time.Hour, 0)), "back-to-back before")
	assert.False(t, a.Overlaps(slot(2*time.Hour, 3*time.Hour)), "disjoint")
}

func TestGrantedRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleStudent}, GrantedRoles(RoleStudent))
	assert.Equal(t, []Role{RoleMentor, RoleStudent}, GrantedRoles(RoleMentor))
	assert.Equal(t, []Role{RoleAdmin, RoleStudent}, GrantedRoles(RoleAdmin))
	assert.Nil(t, GrantedRoles(Role("bogus")))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrSessionNotFound))
	assert.True(t, IsConflictError(ErrSlotUnavailable))
	assert.True(t, IsConflictError(ErrSessionLimitReached))
	assert.True(t, IsValidationError(ErrSlotInPast))
	assert.True(t, IsPermissionError(ErrNotParticipant))
	assert.True(t, IsAuthError(ErrTokenExpired))

	assert.False(t, IsConflictError(ErrSessionNotFound))
	assert.False(t, IsNotFoundError(ErrSlotOverlap))
}
