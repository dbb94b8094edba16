package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medisched/medisched-api/internal/config"
	"github.com/medisched/medisched-api/internal/handler"
	appointmentHandler "github.com/medisched/medisched-api/internal/handler/appointment"
	authHandler "github.com/medisched/medisched-api/internal/handler/auth"
	availabilityHandler "github.com/medisched/medisched-api/internal/handler/availability"
	doctorHandler "github.com/medisched/medisched-api/internal/handler/doctor"
	"github.com/medisched/medisched-api/internal/middleware"
	"github.com/medisched/medisched-api/internal/repository/postgres"
	"github.com/medisched/medisched-api/internal/router"
	authService "github.com/medisched/medisched-api/internal/service/auth"
	availabilityService "github.com/medisched/medisched-api/internal/service/availability"
	bookingService "github.com/medisched/medisched-api/internal/service/booking"
	doctorService "github.com/medisched/medisched-api/internal/service/doctor"
	"github.com/medisched/medisched-api/pkg/auth"
	"github.com/medisched/medisched-api/pkg/logger"
	"github.com/medisched/medisched-api/pkg/metrics"
	redisBroker "github.com/medisched/medisched-api/pkg/messaging/redis"
	"github.com/medisched/medisched-api/pkg/security"
	"github.com/medisched/medisched-api/pkg/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := newLogger(cfg.Logger)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db, cfg.Migrations.Path); err != nil {
		l.Fatal(err, "failed to run migrations")
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics("medisched")
	m.Register(registry)

	// Repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(12)
	authSvc := authService.NewService(doctorRepo, patientRepo, tokens, hasher)
	doctorSvc := doctorService.NewService(doctorRepo, availabilityRepo)
	availabilitySvc := availabilityService.NewService(availabilityRepo, doctorRepo)
	bookingSvc := bookingService.NewService(appointmentRepo, availabilityRepo, outboxRepo, m, l)

	// Handlers
	h := handler.NewHandler(registry, db.Ping)
	authH := authHandler.NewHandler(authSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	r := router.NewRouter(
		authMiddleware,
		authH,
		doctorH,
		availabilityH,
		appointmentH,
		h,
		l,
		registry,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(),
			MetricsPrefix:    "medisched",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redisBroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &l.ZL)
	if err != nil {
		l.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, l, m)
	go outboxProcessor.Start(ctx)

	cleaner := worker.NewOutboxCleaner(outboxRepo, cfg.Outbox.Retention, l)
	if err := cleaner.Start(ctx); err != nil {
		l.Fatal(err, "failed to start outbox cleaner")
	}
	defer cleaner.Stop()

	go func() {
		l.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Fatal(err, "server forced to shutdown")
	}

	l.Info("server exited properly")
}

func newLogger(cfg config.LoggerConfig) *logger.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := logger.Config{Level: level, TimeFormat: time.RFC3339, Output: os.Stdout}
	if cfg.Pretty {
		out.Output = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return logger.NewLogger(&out)
}
