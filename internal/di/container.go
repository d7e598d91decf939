package di

import (
	"github.com/masai-connect/mentor-booking-api/internal/handler"
	"github.com/masai-connect/mentor-booking-api/internal/repository"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/database"
	"github.com/masai-connect/mentor-booking-api/pkg/redis"
)

// Container holds all dependencies for the mentor booking service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	UserRepo        repository.UserRepository
	AuthSessionRepo repository.AuthSessionRepository
	SlotRepo        repository.SlotRepository
	SessionRepo     repository.SessionRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	AuthService         service.AuthService
	AvailabilityService service.AvailabilityService
	BookingService      service.BookingService
	AdminService        service.AdminService

	// Handlers
	HealthHandler       *handler.HealthHandler
	AuthHandler         *handler.AuthHandler
	AvailabilityHandler *handler.AvailabilityHandler
	SessionHandler      *handler.SessionHandler
	AdminHandler        *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	AuthConfig     service.AuthServiceConfig
	BookingConfig  *service.BookingServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.AuthSessionRepo = repository.NewPostgresAuthSessionRepository(pool)
	c.SlotRepo = repository.NewPostgresSlotRepository(pool)
	c.SessionRepo = repository.NewPostgresSessionRepository(pool)

	// Initialize services
	c.AuthService = service.NewAuthService(c.UserRepo, c.AuthSessionRepo, cfg.AuthConfig)
	c.AvailabilityService = service.NewAvailabilityService(c.SlotRepo, c.UserRepo)
	c.BookingService = service.NewBookingService(c.SessionRepo, c.EventPublisher, cfg.BookingConfig)
	c.AdminService = service.NewAdminService(c.UserRepo, c.SessionRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.AvailabilityHandler = handler.NewAvailabilityHandler(c.AvailabilityService)
	c.SessionHandler = handler.NewSessionHandler(c.BookingService)
	c.AdminHandler = handler.NewAdminHandler(c.AdminService)

	return c
}
