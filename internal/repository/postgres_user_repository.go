package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresUserRepository implements UserRepository using PostgreSQL with pgxpool
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, name, email, password_hash, roles, active_role, course,
	session_count, session_limit, created_at, updated_at
`

// Create inserts a new user record
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", user.ID),
		attribute.String("active_role", string(user.ActiveRole)),
	)

	query := `
		INSERT INTO users (
			id, name, email, password_hash, roles, active_role, course,
			session_count, session_limit, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		rolesToStrings(user.Roles),
		string(user.ActiveRole),
		nullString(user.Course),
		user.SessionCount,
		user.SessionLimit,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "duplicate email")
			return domain.ErrUserAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_email")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// UpdateActiveRole sets the user's active role
func (r *PostgresUserRepository) UpdateActiveRole(ctx context.Context, id string, role domain.Role) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.update_active_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.String("role", string(role)),
	)

	query := `
		UPDATE users SET
			active_role = $2,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, string(role), time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update active role: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateSessionLimit sets the user's booking quota
func (r *PostgresUserRepository) UpdateSessionLimit(ctx context.Context, id string, limit int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.update_session_limit")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.Int("session_limit", limit),
	)

	query := `
		UPDATE users SET
			session_limit = $2,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, limit, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update session limit: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByRole lists users holding the given role; empty role lists all
func (r *PostgresUserRepository) ListByRole(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.list_by_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE $1 = ANY(roles)`
		args = append(args, string(role))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(users)))
	span.SetStatus(codes.Ok, "")
	return users, nil
}

// ListMentors lists mentors with their open slot counts
func (r *PostgresUserRepository) ListMentors(ctx context.Context, course string) ([]*MentorSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.list_mentors")
	defer span.End()

	query := `
		SELECT
			u.id, u.name, COALESCE(u.course, ''),
			COUNT(s.id) FILTER (WHERE NOT s.booked AND s.start_time > NOW())
		FROM users u
		LEFT JOIN availability_slots s ON s.mentor_id = u.id
		WHERE 'mentor' = ANY(u.roles)
	`
	args := []interface{}{}
	if course != "" {
		query += ` AND u.course = $1`
		args = append(args, course)
	}
	query += ` GROUP BY u.id, u.name, u.course ORDER BY u.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}
	defer rows.Close()

	var mentors []*MentorSummary
	for rows.Next() {
		m := &MentorSummary{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Course, &m.AvailableSlots); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan mentor: %w", err)
		}
		mentors = append(mentors, m)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating mentors: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(mentors)))
	span.SetStatus(codes.Ok, "")
	return mentors, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var (
		roles      []string
		activeRole string
		course     *string
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&activeRole,
		&course,
		&user.SessionCount,
		&user.SessionLimit,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Roles = stringsToRoles(roles)
	user.ActiveRole = domain.Role(activeRole)
	if course != nil {
		user.Course = *course
	}

	return user, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func stringsToRoles(roles []string) []domain.Role {
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.Role(r))
	}
	return out
}

// Helper function to convert empty string to nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresUserRepository implements UserRepository
var _ UserRepository = (*PostgresUserRepository)(nil)
