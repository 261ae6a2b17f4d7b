// Package main is the entry point for the hotel-booking-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/internal/config"
	"hotel-booking-service/internal/domain"
	"hotel-booking-service/internal/infra/catalog"
	"hotel-booking-service/internal/infra/events"
	"hotel-booking-service/internal/infra/postgres"
	"hotel-booking-service/internal/infra/postgres/migrations"
	rediscache "hotel-booking-service/internal/infra/redis"
	"hotel-booking-service/internal/job"
	"hotel-booking-service/internal/logger"
	"hotel-booking-service/internal/transport/httpserver"
	"hotel-booking-service/internal/transport/httpserver/handler"
	"hotel-booking-service/internal/transport/httpserver/middleware"
	"hotel-booking-service/internal/validator"
	"hotel-booking-service/pkg/locker"
	"hotel-booking-service/pkg/retry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
			Env:     cfg.App.Env,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting hotel-booking-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("catalog", cfg.Catalog.Source),
	)

	ctx := context.Background()

	// Store of record
	db, err := postgres.NewConnection(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		Name:         cfg.Database.Name,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
		LogSQL:       cfg.App.Debug,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	reservations := postgres.NewReservationRepository(db)

	// Shared store for locks and the availability cache
	redisClient, err := rediscache.Connect(ctx, rediscache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = rediscache.Close(redisClient) }()

	readiness := map[string]middleware.ReadinessCheck{
		"database": func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	// Room lookup
	var (
		rooms      domain.RoomCatalog
		roomWriter handler.RoomWriter
	)
	switch cfg.Catalog.Source {
	case config.CatalogHTTP:
		client := catalog.New(catalog.ClientConfig{
			BaseURL: cfg.Catalog.BaseURL,
			Timeout: cfg.Catalog.Timeout,
			Retry: catalog.RetryConfig{
				MaxAttempts: cfg.Catalog.Retry.MaxAttempts,
				WaitTime:    cfg.Catalog.Retry.WaitTime,
				MaxWaitTime: cfg.Catalog.Retry.MaxWaitTime,
			},
			CB: catalog.CBConfig{
				MaxRequests:  cfg.Catalog.CB.MaxRequests,
				Interval:     cfg.Catalog.CB.Interval,
				Timeout:      cfg.Catalog.CB.Timeout,
				FailureRatio: cfg.Catalog.CB.FailureRatio,
			},
		}, log.Logger)
		rooms = client
		readiness["catalog"] = client.HealthCheck
	default:
		roomRepo := postgres.NewRoomRepository(db)
		rooms = roomRepo
		roomWriter = roomRepo
	}

	// Optional collaborators stay nil interfaces when disabled
	var (
		cache        domain.AvailabilityCache
		cacheClearer handler.CacheClearer
	)
	if cfg.Cache.Enabled {
		availabilityCache := rediscache.NewAvailabilityCache(redisClient, log.Logger, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
		cache = availabilityCache
		cacheClearer = availabilityCache
		log.Info("availability cache enabled",
			zap.Duration("ttl", cfg.Cache.TTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("availability cache disabled")
	}

	var publisher domain.EventPublisher
	if cfg.Events.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(events.Config{
			Brokers:      cfg.Events.Brokers,
			Topic:        cfg.Events.Topic,
			Source:       cfg.App.Name,
			Compression:  cfg.Events.Compression,
			MaxAttempts:  cfg.Events.MaxAttempts,
			BatchTimeout: cfg.Events.BatchTimeout,
			WriteTimeout: cfg.Events.WriteTimeout,
		}, log.Logger)
		if err != nil {
			log.Fatal("failed to create event publisher", zap.Error(err))
		}
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
	}

	distLocker := locker.NewRedisLocker(redisClient, log.Logger)

	// Services
	bookings := service.NewBookingService(reservations, rooms, cache, publisher, distLocker,
		service.BookingConfig{
			LockTTL: cfg.Lock.TTL,
			LockRetry: retry.Policy{
				Delay:      cfg.Lock.RetryDelay,
				MaxRetries: cfg.Lock.MaxRetries,
			},
			CacheTTL: cfg.Cache.TTL,
			Rules:    domain.StayRules{MaxNights: cfg.Booking.MaxNights},
		},
		log.Logger,
	)
	availability := service.NewAvailabilityService(reservations, rooms, cache, cfg.Cache.TTL, log.Logger)
	stays := service.NewStayService(reservations, bookings, service.StayConfig{
		PendingTTL: cfg.Booking.PendingTTL,
		BatchSize:  cfg.Scheduler.BatchSize,
	}, log.Logger)

	// HTTP server
	v := validator.New()
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: cfg.App.BodyLimit,
		},
		httpserver.Handlers{
			Reservations: handler.NewReservationHandler(bookings, v, log.Logger),
			Availability: handler.NewAvailabilityHandler(availability, v, log.Logger),
			Admin:        handler.NewAdminHandler(bookings, distLocker, stays, roomWriter, cacheClearer, v, log.Logger),
		},
		readiness,
		log.Logger,
	)

	// Stay sweep, one instance per interval
	var scheduler *job.StayScheduler
	if cfg.Scheduler.Enabled {
		scheduler = job.NewStayScheduler(stays, job.SchedulerConfig{
			Interval:  cfg.Scheduler.Interval,
			Timeout:   cfg.Scheduler.Timeout,
			OnStartup: cfg.Scheduler.OnStartup,
		}, log.Logger, distLocker)
		scheduler.Start()
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
