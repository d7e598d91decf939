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
	"go.opentelemetry.io/otel/trace"
)

// PostgresSlotRepository implements SlotRepository using PostgreSQL with pgxpool
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository
func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

// Add inserts a slot after verifying it does not overlap an existing
// slot of the same mentor. The overlap check and the insert run in one
// transaction; the exclusion constraint on the table is the backstop
// for concurrent inserts.
func (r *PostgresSlotRepository) Add(ctx context.Context, slot *domain.AvailabilitySlot) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.add")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot_id", slot.ID),
		attribute.String("mentor_id", slot.MentorID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM availability_slots
			WHERE mentor_id = $1
				AND start_time < $3
				AND $2 < end_time
		)
	`, slot.MentorID, slot.StartTime, slot.EndTime).Scan(&overlaps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to check slot overlap: %w", err)
	}
	if overlaps {
		span.SetStatus(codes.Error, "overlap")
		return domain.ErrSlotOverlap
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO availability_slots (id, mentor_id, start_time, end_time, booked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, slot.ID, slot.MentorID, slot.StartTime, slot.EndTime, slot.Booked, slot.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			// exclusion constraint hit by a concurrent insert
			span.SetStatus(codes.Error, "overlap")
			return domain.ErrSlotOverlap
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit slot insert: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Remove deletes an unbooked slot owned by the mentor
func (r *PostgresSlotRepository) Remove(ctx context.Context, slotID, mentorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.remove")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot_id", slotID),
		attribute.String("mentor_id", mentorID),
	)

	query := `
		DELETE FROM availability_slots
		WHERE id = $1 AND mentor_id = $2 AND NOT booked
	`

	result, err := r.pool.Exec(ctx, query, slotID, mentorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to remove slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing slot from a booked one
		var booked bool
		err := r.pool.QueryRow(ctx,
			`SELECT booked FROM availability_slots WHERE id = $1 AND mentor_id = $2`,
			slotID, mentorID,
		).Scan(&booked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrSlotNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check slot: %w", err)
		}
		span.SetStatus(codes.Error, "booked")
		return domain.ErrSlotBooked
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a slot by ID
func (r *PostgresSlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	slot := &domain.AvailabilitySlot{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, mentor_id, start_time, end_time, booked, created_at
		FROM availability_slots
		WHERE id = $1
	`, id).Scan(&slot.ID, &slot.MentorID, &slot.StartTime, &slot.EndTime, &slot.Booked, &slot.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSlotNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return slot, nil
}

// ListOpenByMentor lists unbooked future slots of a mentor
func (r *PostgresSlotRepository) ListOpenByMentor(ctx context.Context, mentorID string, after *time.Time, day *time.Time) ([]*domain.AvailabilitySlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.list_open_by_mentor")
	defer span.End()

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	query := `
		SELECT id, mentor_id, start_time, end_time, booked, created_at
		FROM availability_slots
		WHERE mentor_id = $1 AND NOT booked AND start_time > NOW()
	`
	args := []interface{}{mentorID}

	if after != nil {
		args = append(args, *after)
		query += fmt.Sprintf(` AND start_time > $%d`, len(args))
	}
	if day != nil {
		args = append(args, *day)
		query += fmt.Sprintf(` AND start_time >= date_trunc('day', $%d::timestamptz) AND start_time < date_trunc('day', $%d::timestamptz) + interval '1 day'`, len(args), len(args))
	}
	query += ` ORDER BY start_time`

	return r.querySlots(ctx, span, query, args...)
}

// ListByMentor lists all slots of a mentor, booked or not
func (r *PostgresSlotRepository) ListByMentor(ctx context.Context, mentorID string) ([]*domain.AvailabilitySlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.list_by_mentor")
	defer span.End()

	span.SetAttributes(attribute.String("mentor_id", mentorID))

	query := `
		SELECT id, mentor_id, start_time, end_time, booked, created_at
		FROM availability_slots
		WHERE mentor_id = $1
		ORDER BY start_time
	`

	return r.querySlots(ctx, span, query, mentorID)
}

func (r *PostgresSlotRepository) querySlots(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.AvailabilitySlot
	for rows.Next() {
		slot := &domain.AvailabilitySlot{}
		if err := rows.Scan(&slot.ID, &slot.MentorID, &slot.StartTime, &slot.EndTime, &slot.Booked, &slot.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return slots, nil
}

// Ensure PostgresSlotRepository implements SlotRepository
var _ SlotRepository = (*PostgresSlotRepository)(nil)
