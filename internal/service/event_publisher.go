package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/pkg/kafka"
)

// EventPublisher defines the interface for publishing session lifecycle events
type EventPublisher interface {
	// PublishSessionBooked publishes a session booked event
	PublishSessionBooked(ctx context.Context, session *domain.Session) error

	// PublishSessionCancelled publishes a session cancelled event
	PublishSessionCancelled(ctx context.Context, session *domain.Session) error

	// PublishSessionCompleted publishes a session completed event
	PublishSessionCompleted(ctx context.Context, session *domain.Session) error

	// PublishSessionNoShow publishes a session no-show event
	PublishSessionNoShow(ctx context.Context, session *domain.Session) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "session-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mentor-booking"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "mentor-booking-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishSessionBooked publishes a session booked event
func (p *KafkaEventPublisher) PublishSessionBooked(ctx context.Context, session *domain.Session) error {
	return p.publishEvent(ctx, domain.SessionEventBooked, session)
}

// PublishSessionCancelled publishes a session cancelled event
func (p *KafkaEventPublisher) PublishSessionCancelled(ctx context.Context, session *domain.Session) error {
	return p.publishEvent(ctx, domain.SessionEventCancelled, session)
}

// PublishSessionCompleted publishes a session completed event
func (p *KafkaEventPublisher) PublishSessionCompleted(ctx context.Context, session *domain.Session) error {
	return p.publishEvent(ctx, domain.SessionEventCompleted, session)
}

// PublishSessionNoShow publishes a session no-show event
func (p *KafkaEventPublisher) PublishSessionNoShow(ctx context.Context, session *domain.Session) error {
	return p.publishEvent(ctx, domain.SessionEventNoShow, session)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a session event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.SessionEventType, session *domain.Session) error {
	eventID := uuid.New().String()
	event := domain.NewSessionEvent(eventType, session, eventID)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher used
// when the event stream is unavailable and in tests
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishSessionBooked is a no-op
func (p *NoOpEventPublisher) PublishSessionBooked(ctx context.Context, session *domain.Session) error {
	return nil
}

// PublishSessionCancelled is a no-op
func (p *NoOpEventPublisher) PublishSessionCancelled(ctx context.Context, session *domain.Session) error {
	return nil
}

// PublishSessionCompleted is a no-op
func (p *NoOpEventPublisher) PublishSessionCompleted(ctx context.Context, session *domain.Session) error {
	return nil
}

// PublishSessionNoShow is a no-op
func (p *NoOpEventPublisher) PublishSessionNoShow(ctx context.Context, session *domain.Session) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
