package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresAuthSessionRepository implements AuthSessionRepository using
// PostgreSQL with pgxpool
type PostgresAuthSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuthSessionRepository creates a new PostgresAuthSessionRepository
func NewPostgresAuthSessionRepository(pool *pgxpool.Pool) *PostgresAuthSessionRepository {
	return &PostgresAuthSessionRepository{pool: pool}
}

// Create stores a new auth session
func (r *PostgresAuthSessionRepository) Create(ctx context.Context, session *AuthSession) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.auth_session.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("auth_session_id", session.ID),
		attribute.String("user_id", session.UserID),
	)

	query := `
		INSERT INTO auth_sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create auth session: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByTokenHash retrieves an auth session by refresh token hash
func (r *PostgresAuthSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*AuthSession, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.auth_session.get_by_token_hash")
	defer span.End()

	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM auth_sessions
		WHERE token_hash = $1
	`

	session := &AuthSession{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAuthSessionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get auth session: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return session, nil
}

// Delete removes an auth session by ID
func (r *PostgresAuthSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.auth_session.delete")
	defer span.End()

	span.SetAttributes(attribute.String("auth_session_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete auth session: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrAuthSessionNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteByUserID removes all auth sessions of a user
func (r *PostgresAuthSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.auth_session.delete_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	_, err := r.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE user_id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete auth sessions: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresAuthSessionRepository implements AuthSessionRepository
var _ AuthSessionRepository = (*PostgresAuthSessionRepository)(nil)
