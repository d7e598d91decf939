package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/middleware"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	BookSessionFunc     func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error)
	GetSessionFunc      func(ctx context.Context, sessionID, userID string, role domain.Role) (*dto.SessionResponse, error)
	ListSessionsFunc    func(ctx context.Context, userID string, role domain.Role) ([]*dto.SessionResponse, error)
	CancelSessionFunc   func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error)
	CompleteSessionFunc func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error)
	MarkNoShowFunc      func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error)
}

func (m *MockBookingService) BookSession(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
	if m.BookSessionFunc != nil {
		return m.BookSessionFunc(ctx, studentID, req)
	}
	return nil, nil
}

func (m *MockBookingService) GetSession(ctx context.Context, sessionID, userID string, role domain.Role) (*dto.SessionResponse, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID, userID, role)
	}
	return nil, nil
}

func (m *MockBookingService) ListSessions(ctx context.Context, userID string, role domain.Role) ([]*dto.SessionResponse, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, userID, role)
	}
	return []*dto.SessionResponse{}, nil
}

func (m *MockBookingService) CancelSession(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
	if m.CancelSessionFunc != nil {
		return m.CancelSessionFunc(ctx, sessionID, userID)
	}
	return nil, nil
}

func (m *MockBookingService) CompleteSession(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
	if m.CompleteSessionFunc != nil {
		return m.CompleteSessionFunc(ctx, sessionID, mentorID)
	}
	return nil, nil
}

func (m *MockBookingService) MarkNoShow(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
	if m.MarkNoShowFunc != nil {
		return m.MarkNoShowFunc(ctx, sessionID, mentorID)
	}
	return nil, nil
}

// errorEnvelope mirrors the error payload written by pkg/response
type errorEnvelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupSessionRouter(handler *SessionHandler, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyActiveRole, role)
		c.Next()
	})

	sessions := router.Group("/sessions")
	{
		sessions.POST("", handler.Book)
		sessions.GET("", handler.List)
		sessions.GET("/:id", handler.Get)
		sessions.POST("/:id/cancel", handler.Cancel)
		sessions.POST("/:id/complete", handler.Complete)
		sessions.POST("/:id/no-show", handler.NoShow)
	}

	return router
}

func sessionResponseFixture() *dto.SessionResponse {
	now := time.Now()
	return &dto.SessionResponse{
		ID:          "session-123",
		SlotID:      "slot-123",
		StudentID:   "student-123",
		MentorID:    "mentor-123",
		StudentName: "Asha",
		MentorName:  "Ravi",
		StartTime:   now.Add(48 * time.Hour),
		EndTime:     now.Add(49 * time.Hour),
		Status:      "scheduled",
		MeetingLink: "https://meet.jit.si/masai-session-session-123",
	}
}

func TestSessionHandler_Book(t *testing.T) {
	tests := []struct {
		name           string
		request        *dto.BookSessionRequest
		mockFunc       func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful booking",
			request: &dto.BookSessionRequest{MentorID: "mentor-123", SlotID: "slot-123"},
			mockFunc: func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
				return sessionResponseFixture(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing slot_id",
			request:        &dto.BookSessionRequest{MentorID: "mentor-123"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:    "slot already taken",
			request: &dto.BookSessionRequest{MentorID: "mentor-123", SlotID: "slot-123"},
			mockFunc: func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
				return nil, domain.ErrSlotUnavailable
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "SLOT_UNAVAILABLE",
		},
		{
			name:    "session limit reached",
			request: &dto.BookSessionRequest{MentorID: "mentor-123", SlotID: "slot-123"},
			mockFunc: func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
				return nil, domain.ErrSessionLimitReached
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "SESSION_LIMIT_REACHED",
		},
		{
			name:    "slot not found",
			request: &dto.BookSessionRequest{MentorID: "mentor-123", SlotID: "ghost"},
			mockFunc: func(ctx context.Context, studentID string, req *dto.BookSessionRequest) (*dto.SessionResponse, error) {
				return nil, domain.ErrSlotNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{BookSessionFunc: tt.mockFunc}
			handler := NewSessionHandler(mockService)
			router := setupSessionRouter(handler, "student-123", "student")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var envelope errorEnvelope
				if err := json.Unmarshal(w.Body.Bytes(), &envelope); err == nil && envelope.Error != nil {
					if envelope.Error.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, envelope.Error.Code)
					}
				} else {
					t.Errorf("expected error envelope, got %s", w.Body.String())
				}
			}
		})
	}
}

func TestSessionHandler_Cancel(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful cancellation",
			mockFunc: func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
				resp := sessionResponseFixture()
				resp.Status = "cancelled"
				resp.CancelledBy = userID
				return resp, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "window closed",
			mockFunc: func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
				return nil, domain.ErrCancellationWindowClosed
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CANCELLATION_WINDOW_CLOSED",
		},
		{
			name: "not a participant",
			mockFunc: func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
				return nil, domain.ErrNotParticipant
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name: "session not found",
			mockFunc: func(ctx context.Context, sessionID, userID string) (*dto.SessionResponse, error) {
				return nil, domain.ErrSessionNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{CancelSessionFunc: tt.mockFunc}
			handler := NewSessionHandler(mockService)
			router := setupSessionRouter(handler, "student-123", "student")

			req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/cancel", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var envelope errorEnvelope
				if err := json.Unmarshal(w.Body.Bytes(), &envelope); err == nil && envelope.Error != nil {
					if envelope.Error.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, envelope.Error.Code)
					}
				}
			}
		})
	}
}

func TestSessionHandler_Complete(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "mentor completes session",
			mockFunc: func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
				resp := sessionResponseFixture()
				resp.Status = "completed"
				return resp, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not the session mentor",
			mockFunc: func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
				return nil, domain.ErrMentorOnly
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name: "session not ended",
			mockFunc: func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
				return nil, domain.ErrSessionNotEnded
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "SESSION_NOT_ENDED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{CompleteSessionFunc: tt.mockFunc}
			handler := NewSessionHandler(mockService)
			router := setupSessionRouter(handler, "mentor-123", "mentor")

			req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/complete", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestSessionHandler_List(t *testing.T) {
	var gotRole domain.Role
	mockService := &MockBookingService{
		ListSessionsFunc: func(ctx context.Context, userID string, role domain.Role) ([]*dto.SessionResponse, error) {
			gotRole = role
			return []*dto.SessionResponse{sessionResponseFixture()}, nil
		},
	}
	handler := NewSessionHandler(mockService)
	router := setupSessionRouter(handler, "mentor-123", "mentor")

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if gotRole != domain.RoleMentor {
		t.Errorf("expected role mentor passed to service, got %s", gotRole)
	}
}

func TestSessionHandler_NoShow(t *testing.T) {
	mockService := &MockBookingService{
		MarkNoShowFunc: func(ctx context.Context, sessionID, mentorID string) (*dto.SessionResponse, error) {
			resp := sessionResponseFixture()
			resp.Status = "no_show"
			return resp, nil
		},
	}
	handler := NewSessionHandler(mockService)
	router := setupSessionRouter(handler, "mentor-123", "mentor")

	req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/no-show", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var envelope struct {
		Success bool                 `json:"success"`
		Data    *dto.SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data == nil || envelope.Data.Status != "no_show" {
		t.Errorf("expected no_show session in response, got %s", w.Body.String())
	}
}
