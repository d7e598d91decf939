package metrics

import (
	"context"
	"sync"

	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Session counters
	SessionsBooked    *telemetry.Counter
	SessionsCancelled *telemetry.Counter
	SessionsCompleted *telemetry.Counter
	SessionsNoShow    *telemetry.Counter
	BookingsFailed    *telemetry.Counter

	// Slot counters
	SlotsAdded   *telemetry.Counter
	SlotsRemoved *telemetry.Counter

	// Auth counters
	Registrations *telemetry.Counter
	Logins        *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	// Gauges
	ScheduledSessions *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all application metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	SessionsBooked, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "sessions_booked_total",
		Description: "Total number of sessions booked",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SessionsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "sessions_cancelled_total",
		Description: "Total number of sessions cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SessionsCompleted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "sessions_completed_total",
		Description: "Total number of sessions marked completed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SessionsNoShow, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "sessions_no_show_total",
		Description: "Total number of sessions marked no-show",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_failures_total",
		Description: "Total number of failed booking attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SlotsAdded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "availability_slots_added_total",
		Description: "Total number of availability slots published",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SlotsRemoved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "availability_slots_removed_total",
		Description: "Total number of availability slots withdrawn",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	Registrations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "user_registrations_total",
		Description: "Total number of user registrations by role",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	Logins, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "user_logins_total",
		Description: "Total number of successful logins",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "http_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ScheduledSessions, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "sessions_scheduled",
		Description: "Current number of scheduled sessions",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordBooking records a successful session booking
func RecordBooking(ctx context.Context, mentorID string) {
	if SessionsBooked != nil {
		SessionsBooked.Inc(ctx, attribute.String("mentor_id", mentorID))
	}
	if ScheduledSessions != nil {
		ScheduledSessions.Inc(ctx)
	}
}

// RecordBookingFailure records a failed booking attempt
func RecordBookingFailure(ctx context.Context, reason string) {
	if BookingsFailed != nil {
		BookingsFailed.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordCancellation records a session cancellation
func RecordCancellation(ctx context.Context, cancelledByRole string) {
	if SessionsCancelled != nil {
		SessionsCancelled.Inc(ctx, attribute.String("cancelled_by", cancelledByRole))
	}
	if ScheduledSessions != nil {
		ScheduledSessions.Dec(ctx)
	}
}

// RecordClosure records a session being marked completed or no-show
func RecordClosure(ctx context.Context, completed bool) {
	if completed {
		if SessionsCompleted != nil {
			SessionsCompleted.Inc(ctx)
		}
	} else {
		if SessionsNoShow != nil {
			SessionsNoShow.Inc(ctx)
		}
	}
	if ScheduledSessions != nil {
		ScheduledSessions.Dec(ctx)
	}
}

// RecordSlotAdded records a published availability slot
func RecordSlotAdded(ctx context.Context, mentorID string) {
	if SlotsAdded != nil {
		SlotsAdded.Inc(ctx, attribute.String("mentor_id", mentorID))
	}
}

// RecordSlotRemoved records a withdrawn availability slot
func RecordSlotRemoved(ctx context.Context, mentorID string) {
	if SlotsRemoved != nil {
		SlotsRemoved.Inc(ctx, attribute.String("mentor_id", mentorID))
	}
}

// RecordRegistration records a signup by primary role
func RecordRegistration(ctx context.Context, role string) {
	if Registrations != nil {
		Registrations.Inc(ctx, attribute.String("role", role))
	}
}

// RecordLogin records a successful login
func RecordLogin(ctx context.Context) {
	if Logins != nil {
		Logins.Inc(ctx)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
