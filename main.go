package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/di"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/internal/metrics"
	appmiddleware "github.com/masai-connect/mentor-booking-api/internal/middleware"
	"github.com/masai-connect/mentor-booking-api/internal/service"
	"github.com/masai-connect/mentor-booking-api/pkg/config"
	"github.com/masai-connect/mentor-booking-api/pkg/database"
	"github.com/masai-connect/mentor-booking-api/pkg/logger"
	"github.com/masai-connect/mentor-booking-api/pkg/middleware"
	pkgredis "github.com/masai-connect/mentor-booking-api/pkg/redis"
	"github.com/masai-connect/mentor-booking-api/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "mentor-booking-api",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Mentor Booking API...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, tracing disabled: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize metrics instruments
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection (idempotency cache)
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: "mentor-booking-api",
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		AuthConfig: service.AuthServiceConfig{
			JWTSecret:           cfg.JWT.Secret,
			AccessTokenTTL:      cfg.JWT.AccessTokenTTL,
			RefreshTokenTTL:     cfg.JWT.RefreshTokenTTL,
			Issuer:              cfg.JWT.Issuer,
			DefaultSessionLimit: cfg.Booking.DefaultSessionLimit,
			MentorCode:          cfg.Signup.MentorCode,
			AdminCode:           cfg.Signup.AdminCode,
		},
		BookingConfig: &service.BookingServiceConfig{
			CancellationWindow: cfg.Booking.CancellationWindow,
			MeetingLinkBase:    cfg.Booking.MeetingLinkBase,
		},
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware("mentor-booking-api"))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": "mentor-booking-api",
			})
		})

		// Public auth endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/register", container.AuthHandler.Register)
			auth.POST("/login", container.AuthHandler.Login)
			auth.POST("/refresh", container.AuthHandler.Refresh)
			auth.POST("/logout", container.AuthHandler.Logout)
		}

		// Protected auth endpoints
		authed := auth.Group("")
		authed.Use(appmiddleware.Auth(container.AuthService))
		{
			authed.GET("/me", container.AuthHandler.Me)
			authed.POST("/switch-role", container.AuthHandler.SwitchRole)
		}

		// Mentor browsing and availability management
		mentors := v1.Group("/mentors")
		mentors.Use(appmiddleware.Auth(container.AuthService))
		{
			mentors.GET("", container.AvailabilityHandler.ListMentors)
			mentors.GET("/:id/slots", container.AvailabilityHandler.ListSlots)

			mine := mentors.Group("/me")
			mine.Use(appmiddleware.RequireRole(domain.RoleMentor))
			{
				mine.POST("/slots", container.AvailabilityHandler.AddSlot)
				mine.DELETE("/slots/:id", container.AvailabilityHandler.RemoveSlot)
			}
		}

		// Session booking and lifecycle
		idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
		idempotencyConfig.SkipPaths = []string{"/health", "/ready"}

		sessions := v1.Group("/sessions")
		sessions.Use(appmiddleware.Auth(container.AuthService))
		{
			sessions.POST("",
				appmiddleware.RequireRole(domain.RoleStudent),
				middleware.IdempotencyMiddleware(idempotencyConfig),
				container.SessionHandler.Book)
			sessions.GET("", container.SessionHandler.List)
			sessions.GET("/:id", container.SessionHandler.Get)
			sessions.POST("/:id/cancel", container.SessionHandler.Cancel)
			sessions.POST("/:id/complete",
				appmiddleware.RequireRole(domain.RoleMentor),
				container.SessionHandler.Complete)
			sessions.POST("/:id/no-show",
				appmiddleware.RequireRole(domain.RoleMentor),
				container.SessionHandler.NoShow)
		}

		// Admin endpoints
		admin := v1.Group("/admin")
		admin.Use(appmiddleware.Auth(container.AuthService))
		admin.Use(appmiddleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/users", container.AdminHandler.ListUsers)
			admin.PUT("/users/:id/session-limit", container.AdminHandler.UpdateSessionLimit)
			admin.GET("/stats", container.AdminHandler.Stats)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Mentor Booking API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
