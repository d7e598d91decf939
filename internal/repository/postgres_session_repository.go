package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PostgresSessionRepository implements SessionRepository using
// PostgreSQL with pgxpool
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `
	id, slot_id, student_id, mentor_id, student_name, mentor_name,
	course, start_time, end_time, status, meeting_link, cancelled_by,
	created_at, updated_at
`

// Book atomically claims the slot, consumes one unit of the student's
// quota and creates the session record. All three steps run in one
// transaction: if any step finds its precondition gone, the whole
// booking rolls back and nothing is consumed.
func (r *PostgresSessionRepository) Book(ctx context.Context, params *BookParams) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.book")
	defer span.End()

	span.SetAttributes(
		attribute.String("student_id", params.StudentID),
		attribute.String("mentor_id", params.MentorID),
		attribute.String("slot_id", params.SlotID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Step 1: claim the slot. The booked=FALSE predicate is the
	// compare-and-set; a concurrent booking of the same slot loses here.
	var startTime, endTime time.Time
	err = tx.QueryRow(ctx, `
		UPDATE availability_slots
		SET booked = TRUE
		WHERE id = $1 AND mentor_id = $2 AND NOT booked AND start_time > NOW()
		RETURNING start_time, end_time
	`, params.SlotID, params.MentorID).Scan(&startTime, &endTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM availability_slots WHERE id = $1 AND mentor_id = $2)`,
				params.SlotID, params.MentorID,
			).Scan(&exists); checkErr == nil && !exists {
				span.SetStatus(codes.Error, "slot not found")
				return nil, domain.ErrSlotNotFound
			}
			span.SetStatus(codes.Error, "slot unavailable")
			return nil, domain.ErrSlotUnavailable
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}

	// Step 2: consume one unit of the student's quota. The
	// session_count < session_limit predicate enforces the limit under
	// concurrency; losing here rolls back the slot claim.
	var studentName string
	var studentCourse *string
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET session_count = session_count + 1, updated_at = NOW()
		WHERE id = $1 AND session_count < session_limit
		RETURNING name, course
	`, params.StudentID).Scan(&studentName, &studentCourse)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
				params.StudentID,
			).Scan(&exists); checkErr == nil && !exists {
				span.SetStatus(codes.Error, "student not found")
				return nil, domain.ErrUserNotFound
			}
			span.SetStatus(codes.Error, "limit reached")
			return nil, domain.ErrSessionLimitReached
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to consume session quota: %w", err)
	}

	var mentorName string
	err = tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, params.MentorID).Scan(&mentorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "mentor not found")
			return nil, domain.ErrMentorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load mentor: %w", err)
	}

	// Step 3: create the session record
	now := time.Now()
	session := &domain.Session{
		ID:          uuid.New().String(),
		SlotID:      params.SlotID,
		StudentID:   params.StudentID,
		MentorID:    params.MentorID,
		StudentName: studentName,
		MentorName:  mentorName,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      domain.SessionStatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if studentCourse != nil {
		session.Course = *studentCourse
	}
	session.MeetingLink = domain.MeetingLinkFor(params.MeetingLinkBase, session.ID)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (
			id, slot_id, student_id, mentor_id, student_name, mentor_name,
			course, start_time, end_time, status, meeting_link,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`,
		session.ID,
		session.SlotID,
		session.StudentID,
		session.MentorID,
		session.StudentName,
		session.MentorName,
		nullString(session.Course),
		session.StartTime,
		session.EndTime,
		string(session.Status),
		session.MeetingLink,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	span.SetAttributes(attribute.String("session_id", session.ID))
	span.SetStatus(codes.Ok, "")
	return session, nil
}

// GetByID retrieves a session by ID
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", id))

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSessionRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSessionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return session, nil
}

// Cancel atomically marks a scheduled session cancelled and releases
// its slot so it can be booked again
func (r *PostgresSessionRepository) Cancel(ctx context.Context, sessionID, cancelledBy string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("cancelled_by", cancelledBy),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID string
	err = tx.QueryRow(ctx, `
		UPDATE sessions
		SET status = $2, cancelled_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING slot_id
	`, sessionID, string(domain.SessionStatusCancelled), cancelledBy, string(domain.SessionStatusScheduled)).Scan(&slotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, sessionID,
			).Scan(&exists); checkErr == nil && !exists {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrSessionNotFound
			}
			span.SetStatus(codes.Error, "not scheduled")
			return domain.ErrSessionNotScheduled
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to cancel session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE availability_slots SET booked = FALSE WHERE id = $1
	`, slotID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Close transitions a scheduled session to completed or no_show
func (r *PostgresSessionRepository) Close(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.close")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.pool.Exec(ctx, query, sessionID, string(status), string(domain.SessionStatusScheduled))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to close session: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if checkErr := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, sessionID,
		).Scan(&exists); checkErr == nil && !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrSessionNotFound
		}
		span.SetStatus(codes.Error, "not scheduled")
		return domain.ErrSessionNotScheduled
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByStudent lists a student's sessions, newest first
func (r *PostgresSessionRepository) ListByStudent(ctx context.Context, studentID string) ([]*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.list_by_student")
	defer span.End()

	span.SetAttributes(attribute.String("student_id", studentID))

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE student_id = $1 ORDER BY start_time DESC`
	return r.querySessions(ctx, span, query, studentID)
}

// ListByMentor lists a mentor's sessions, newest first
func (r *PostgresSessionRepository) ListByMentor(ctx context.Context, mentorID string) ([]*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.list_by_mentor")
	defer span.End()

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE mentor_id = $1 ORDER BY start_time DESC`
	return r.querySessions(ctx, span, query, mentorID)
}

// ListAll lists all sessions, newest first
func (r *PostgresSessionRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.list_all")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	return r.querySessions(ctx, span, query, limit, offset)
}

// Stats returns platform-wide counters for the admin dashboard
func (r *PostgresSessionRepository) Stats(ctx context.Context) (*PlatformStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.session.stats")
	defer span.End()

	stats := &PlatformStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE roles = '{student}'),
			(SELECT COUNT(*) FROM users WHERE 'mentor' = ANY(roles)),
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM sessions WHERE status = 'scheduled'),
			(SELECT COUNT(*) FROM sessions WHERE status = 'cancelled'),
			(SELECT COUNT(*) FROM sessions WHERE status = 'completed'),
			(SELECT COUNT(*) FROM sessions WHERE status = 'no_show'),
			(SELECT COUNT(*) FROM availability_slots WHERE NOT booked AND start_time > NOW())
	`).Scan(
		&stats.TotalUsers,
		&stats.TotalStudents,
		&stats.TotalMentors,
		&stats.TotalSessions,
		&stats.ScheduledSessions,
		&stats.CancelledSessions,
		&stats.CompletedSessions,
		&stats.NoShowSessions,
		&stats.OpenSlots,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return stats, nil
}

func (r *PostgresSessionRepository) querySessions(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(sessions)))
	span.SetStatus(codes.Ok, "")
	return sessions, nil
}

func scanSessionRow(row rowScanner) (*domain.Session, error) {
	session := &domain.Session{}
	var (
		status      string
		course      *string
		cancelledBy *string
	)

	err := row.Scan(
		&session.ID,
		&session.SlotID,
		&session.StudentID,
		&session.MentorID,
		&session.StudentName,
		&session.MentorName,
		&course,
		&session.StartTime,
		&session.EndTime,
		&status,
		&session.MeetingLink,
		&cancelledBy,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = domain.SessionStatus(status)
	if course != nil {
		session.Course = *course
	}
	if cancelledBy != nil {
		session.CancelledBy = *cancelledBy
	}

	return session, nil
}

// Ensure PostgresSessionRepository implements SessionRepository
var _ SessionRepository = (*PostgresSessionRepository)(nil)
