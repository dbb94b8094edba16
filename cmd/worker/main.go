package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medisched/medisched-api/internal/config"
	"github.com/medisched/medisched-api/internal/email"
	notificationService "github.com/medisched/medisched-api/internal/service/notification"
	"github.com/medisched/medisched-api/pkg/logger"
	redisBroker "github.com/medisched/medisched-api/pkg/messaging/redis"
	"github.com/medisched/medisched-api/pkg/worker"
)

// The notification worker consumes booking events published by the API's
// outbox processor and emails both parties.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	l := logger.NewLogger(&logger.Config{Level: level, TimeFormat: time.RFC3339, Output: os.Stdout})

	broker, err := redisBroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &l.ZL)
	if err != nil {
		l.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	sender := email.NewSMTPSender(cfg.SMTP)
	notifier := notificationService.NewService(sender, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := broker.Subscribe(ctx, worker.NotificationChannel)
	if err != nil {
		l.Fatal(err, "failed to subscribe to notification channel")
	}

	l.Info("notification worker started", "channel", worker.NotificationChannel)

	go func() {
		for msg := range messages {
			if err := notifier.HandleMessage(msg); err != nil {
				l.Error(err, "failed to handle notification message")
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down notification worker")
}
