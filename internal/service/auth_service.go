package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/dto"
	"github.com/masai-connect/mentor-booking-api/internal/metrics"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	// Register creates a new user and issues a token pair
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)

	// Login verifies credentials and issues a token pair
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)

	// Refresh rotates a refresh token into a new token pair
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error)

	// Logout revokes a refresh token
	Logout(ctx context.Context, refreshToken string) error

	// GetUser returns the user's profile
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)

	// SwitchRole changes the user's active role to one they hold and
	// re-issues tokens so the new role is carried in the claims
	SwitchRole(ctx context.Context, userID string, role domain.Role) (*dto.AuthResponse, error)

	// ValidateAccessToken parses and verifies an access token
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the custom JWT claims carried by access tokens
type TokenClaims struct {
	UserID     string   `json:"uid"`
	ActiveRole string   `json:"role"`
	Roles      []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	Issuer              string
	DefaultSessionLimit int
	MentorCode          string
	AdminCode           string
}

// authService implements AuthService
type authService struct {
	userRepo        repository.UserRepository
	authSessionRepo repository.AuthSessionRepository
	cfg             AuthServiceConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	authSessionRepo repository.AuthSessionRepository,
	cfg AuthServiceConfig,
) AuthService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.DefaultSessionLimit <= 0 {
		cfg.DefaultSessionLimit = 5
	}
	return &authService{
		userRepo:        userRepo,
		authSessionRepo: authSessionRepo,
		cfg:             cfg,
	}
}

// Register creates a new user and issues a token pair
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	role := domain.Role(req.Role)
	if !domain.ValidRole(role) {
		span.SetStatus(codes.Error, "invalid role")
		return nil, domain.ErrInvalidRole
	}

	span.SetAttributes(attribute.String("role", string(role)))

	// Elevated roles require a verification code at signup
	switch role {
	case domain.RoleMentor:
		if req.VerificationCode != s.cfg.MentorCode {
			span.SetStatus(codes.Error, "invalid verification code")
			return nil, domain.ErrInvalidVerificationCode
		}
	case domain.RoleAdmin:
		if req.VerificationCode != s.cfg.AdminCode {
			span.SetStatus(codes.Error, "invalid verification code")
			return nil, domain.ErrInvalidVerificationCode
		}
	}

	if role == domain.RoleStudent && req.Course == "" {
		span.SetStatus(codes.Error, "course required")
		return nil, domain.ErrCourseRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        domain.GrantedRoles(role),
		ActiveRole:   role,
		Course:       req.Course,
		SessionCount: 0,
		SessionLimit: s.cfg.DefaultSessionLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordRegistration(ctx, string(role))

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{
		User:   dto.UserFromDomain(user),
		Tokens: tokens,
	}, nil
}

// Login verifies credentials and issues a token pair
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordLogin(ctx)

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{
		User:   dto.UserFromDomain(user),
		Tokens: tokens,
	}, nil
}

// Refresh rotates a refresh token into a new token pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	authSession, err := s.authSessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrAuthSessionNotFound) {
			span.SetStatus(codes.Error, "invalid token")
			return nil, domain.ErrInvalidToken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if time.Now().After(authSession.ExpiresAt) {
		_ = s.authSessionRepo.Delete(ctx, authSession.ID)
		span.SetStatus(codes.Error, "token expired")
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, authSession.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Rotate: the old refresh token is single-use
	if err := s.authSessionRepo.Delete(ctx, authSession.ID); err != nil && !errors.Is(err, domain.ErrAuthSessionNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return tokens, nil
}

// Logout revokes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	authSession, err := s.authSessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrAuthSessionNotFound) {
			// Already revoked; logout is idempotent
			span.SetStatus(codes.Ok, "")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.authSessionRepo.Delete(ctx, authSession.ID); err != nil && !errors.Is(err, domain.ErrAuthSessionNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetUser returns the user's profile
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.UserFromDomain(user), nil
}

// SwitchRole changes the user's active role to one they hold. A fresh
// token pair is issued because the active role travels in the access
// token claims.
func (s *authService) SwitchRole(ctx context.Context, userID string, role domain.Role) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.switch_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("role", string(role)),
	)

	if !domain.ValidRole(role) {
		span.SetStatus(codes.Error, "invalid role")
		return nil, domain.ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !user.HasRole(role) {
		span.SetStatus(codes.Error, "role not granted")
		return nil, domain.ErrRoleNotGranted
	}

	if err := s.userRepo.UpdateActiveRole(ctx, userID, role); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user.ActiveRole = role

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{User: dto.UserFromDomain(user), Tokens: tokens}, nil
}

// ValidateAccessToken parses and verifies an access token
func (s *authService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// issueTokens creates an access/refresh token pair and stores the
// refresh token hash server-side
func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*dto.TokenPairResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}

	claims := &TokenClaims{
		UserID:     user.ID,
		ActiveRole: string(user.ActiveRole),
		Roles:      roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	authSession := &repository.AuthSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := s.authSessionRepo.Create(ctx, authSession); err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
