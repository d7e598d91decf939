package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
)

// skipIfNoIntegration skips the test unless integration tests are enabled
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Skipping integration test: set TEST_INTEGRATION=1 to run")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "mentor_booking_test"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, roles []string, limit int) *domain.User {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         "Test User " + uuid.New().String()[:8],
		Email:        uuid.New().String() + "@test.local",
		PasswordHash: "x",
		ActiveRole:   domain.Role(roles[0]),
		Course:       "go-backend",
		SessionLimit: limit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, domain.Role(r))
	}

	repo := NewPostgresUserRepository(pool)
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DELETE FROM sessions WHERE student_id = $1 OR mentor_id = $1", user.ID)
		_, _ = pool.Exec(ctx, "DELETE FROM availability_slots WHERE mentor_id = $1", user.ID)
		_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

func createTestSlot(t *testing.T, pool *pgxpool.Pool, mentorID string, startIn time.Duration) *domain.AvailabilitySlot {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	slot := &domain.AvailabilitySlot{
		ID:        uuid.New().String(),
		MentorID:  mentorID,
		StartTime: now.Add(startIn),
		EndTime:   now.Add(startIn + time.Hour),
		CreatedAt: now,
	}

	repo := NewPostgresSlotRepository(pool)
	if err := repo.Add(ctx, slot); err != nil {
		t.Fatalf("Failed to create test slot: %v", err)
	}
	return slot
}

func TestPostgresSessionRepository_Book(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	student := createTestUser(t, pool, []string{"student"}, 5)
	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot := createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	session, err := repo.Book(ctx, &BookParams{
		StudentID:       student.ID,
		MentorID:        mentor.ID,
		SlotID:          slot.ID,
		MeetingLinkBase: "https://meet.jit.si/masai-session-",
	})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if session.Status != domain.SessionStatusScheduled {
		t.Errorf("Status = %v, want scheduled", session.Status)
	}
	if session.MeetingLink != "https://meet.jit.si/masai-session-"+session.ID {
		t.Errorf("MeetingLink = %v", session.MeetingLink)
	}
	if session.StudentName != student.Name || session.MentorName != mentor.Name {
		t.Errorf("Denormalized names not set: %q / %q", session.StudentName, session.MentorName)
	}

	// Slot must be claimed
	slotRepo := NewPostgresSlotRepository(pool)
	got, err := slotRepo.GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Booked {
		t.Error("Slot not marked booked after Book()")
	}

	// Quota must be consumed
	userRepo := NewPostgresUserRepository(pool)
	gotStudent, err := userRepo.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if gotStudent.SessionCount != 1 {
		t.Errorf("SessionCount = %d, want 1", gotStudent.SessionCount)
	}
}

func TestPostgresSessionRepository_Book_SlotUnavailable(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	studentA := createTestUser(t, pool, []string{"student"}, 5)
	studentB := createTestUser(t, pool, []string{"student"}, 5)
	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot := createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	if _, err := repo.Book(ctx, &BookParams{StudentID: studentA.ID, MentorID: mentor.ID, SlotID: slot.ID, MeetingLinkBase: "x-"}); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}

	_, err := repo.Book(ctx, &BookParams{StudentID: studentB.ID, MentorID: mentor.ID, SlotID: slot.ID, MeetingLinkBase: "x-"})
	if err != domain.ErrSlotUnavailable {
		t.Errorf("second Book() error = %v, want %v", err, domain.ErrSlotUnavailable)
	}

	// Loser's quota must be untouched
	userRepo := NewPostgresUserRepository(pool)
	gotB, err := userRepo.GetByID(ctx, studentB.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if gotB.SessionCount != 0 {
		t.Errorf("SessionCount = %d, want 0 after failed booking", gotB.SessionCount)
	}
}

func TestPostgresSessionRepository_Book_LimitReached(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	student := createTestUser(t, pool, []string{"student"}, 1)
	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot1 := createTestSlot(t, pool, mentor.ID, 48*time.Hour)
	slot2 := createTestSlot(t, pool, mentor.ID, 72*time.Hour)

	if _, err := repo.Book(ctx, &BookParams{StudentID: student.ID, MentorID: mentor.ID, SlotID: slot1.ID, MeetingLinkBase: "x-"}); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}

	_, err := repo.Book(ctx, &BookParams{StudentID: student.ID, MentorID: mentor.ID, SlotID: slot2.ID, MeetingLinkBase: "x-"})
	if err != domain.ErrSessionLimitReached {
		t.Errorf("Book() error = %v, want %v", err, domain.ErrSessionLimitReached)
	}

	// Failed booking must roll back the slot claim
	slotRepo := NewPostgresSlotRepository(pool)
	got, err := slotRepo.GetByID(ctx, slot2.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Booked {
		t.Error("Slot stayed booked after rolled-back booking")
	}
}

func TestPostgresSessionRepository_Cancel_ReleasesSlot(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	student := createTestUser(t, pool, []string{"student"}, 5)
	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot := createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	session, err := repo.Book(ctx, &BookParams{StudentID: student.ID, MentorID: mentor.ID, SlotID: slot.ID, MeetingLinkBase: "x-"})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if err := repo.Cancel(ctx, session.ID, student.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	slotRepo := NewPostgresSlotRepository(pool)
	got, err := slotRepo.GetByID(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Booked {
		t.Error("Slot not released after cancellation")
	}

	// Second cancel must fail
	if err := repo.Cancel(ctx, session.ID, student.ID); err != domain.ErrSessionNotScheduled {
		t.Errorf("second Cancel() error = %v, want %v", err, domain.ErrSessionNotScheduled)
	}
}

func TestPostgresSessionRepository_Book_Concurrent(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot := createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	const racers = 8
	students := make([]*domain.User, racers)
	for i := range students {
		students[i] = createTestUser(t, pool, []string{"student"}, 5)
	}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Book(ctx, &BookParams{
				StudentID:       students[i].ID,
				MentorID:        mentor.ID,
				SlotID:          slot.ID,
				MeetingLinkBase: "x-",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch err {
		case nil:
			winners++
		case domain.ErrSlotUnavailable:
		default:
			t.Errorf("Book() [%d] error = %v, want nil or %v", i, err, domain.ErrSlotUnavailable)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	var sessionCount int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE slot_id = $1`, slot.ID,
	).Scan(&sessionCount); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessionCount != 1 {
		t.Errorf("session rows = %d, want 1", sessionCount)
	}

	// Exactly one unit of quota consumed across all racers
	userRepo := NewPostgresUserRepository(pool)
	totalConsumed := 0
	for _, s := range students {
		got, err := userRepo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		totalConsumed += got.SessionCount
	}
	if totalConsumed != 1 {
		t.Errorf("total quota consumed = %d, want 1", totalConsumed)
	}
}

func TestPostgresSlotRepository_Remove_AfterCancel(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	student := createTestUser(t, pool, []string{"student"}, 5)
	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot := createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	session, err := repo.Book(ctx, &BookParams{StudentID: student.ID, MentorID: mentor.ID, SlotID: slot.ID, MeetingLinkBase: "x-"})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if err := repo.Cancel(ctx, session.ID, student.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	// The released slot can be removed even though a cancelled session
	// still references its ID
	slotRepo := NewPostgresSlotRepository(pool)
	if err := slotRepo.Remove(ctx, slot.ID, mentor.ID); err != nil {
		t.Fatalf("Remove() after cancel error = %v", err)
	}

	// The session outlives the slot
	got, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SlotID != slot.ID {
		t.Errorf("SlotID = %v, want %v", got.SlotID, slot.ID)
	}
	if got.Status != domain.SessionStatusCancelled {
		t.Errorf("Status = %v, want cancelled", got.Status)
	}
}

func TestPostgresSlotRepository_ListOpen_AfterExclusive(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()

	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	slot1 := createTestSlot(t, pool, mentor.ID, 48*time.Hour)
	slot2 := createTestSlot(t, pool, mentor.ID, 72*time.Hour)

	slotRepo := NewPostgresSlotRepository(pool)

	// A slot starting exactly at the cutoff is excluded
	slots, err := slotRepo.ListOpenByMentor(ctx, mentor.ID, &slot1.StartTime, nil)
	if err != nil {
		t.Fatalf("ListOpenByMentor() error = %v", err)
	}
	if len(slots) != 1 || slots[0].ID != slot2.ID {
		t.Errorf("slots after %v = %v, want only %v", slot1.StartTime, slots, slot2.ID)
	}
}

func TestPostgresSessionRepository_Stats_CountsPureStudents(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSessionRepository(pool)

	before, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	// A mentor also holds the student role but must not count as a student
	createTestUser(t, pool, []string{"student"}, 5)
	createTestUser(t, pool, []string{"mentor", "student"}, 5)

	after, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if got := after.TotalStudents - before.TotalStudents; got != 1 {
		t.Errorf("TotalStudents delta = %d, want 1", got)
	}
	if got := after.TotalMentors - before.TotalMentors; got != 1 {
		t.Errorf("TotalMentors delta = %d, want 1", got)
	}
	if got := after.TotalUsers - before.TotalUsers; got != 2 {
		t.Errorf("TotalUsers delta = %d, want 2", got)
	}
}

func TestPostgresSessionRepository_GetByID_NotFound(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresSessionRepository(pool)

	_, err := repo.GetByID(context.Background(), uuid.New().String())
	if err != domain.ErrSessionNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, domain.ErrSessionNotFound)
	}
}

func TestPostgresSlotRepository_Add_Overlap(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := NewPostgresSlotRepository(pool)

	mentor := createTestUser(t, pool, []string{"mentor", "student"}, 5)
	createTestSlot(t, pool, mentor.ID, 48*time.Hour)

	now := time.Now()
	overlapping := &domain.AvailabilitySlot{
		ID:        uuid.New().String(),
		MentorID:  mentor.ID,
		StartTime: now.Add(48*time.Hour + 30*time.Minute),
		EndTime:   now.Add(48*time.Hour + 90*time.Minute),
		CreatedAt: now,
	}

	if err := repo.Add(ctx, overlapping); err != domain.ErrSlotOverlap {
		t.Errorf("Add() error = %v, want %v", err, domain.ErrSlotOverlap)
	}
}
