package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sencity/user-service/adapters/event"
	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
)

// The worker writes an audit log entry for every registered profile.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	consumer, err := event.NewUserEventsConsumer(cfg, cfg.App.Name+"-audit", appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditLogger := appLogger.With(zap.String("component", "registration-audit"))
	appLogger.Info("Worker listening for user events...")

	err = consumer.Run(ctx, func(_ context.Context, evt userprofile.RegisteredEvent) error {
		auditLogger.Info("User registered",
			zap.String("profile_id", evt.ProfileID.String()),
			zap.String("email", evt.Email),
			zap.Time("occurred_at", evt.OccurredAt),
		)
		return nil
	})
	if err != nil {
		appLogger.Error("Worker stopped", err)
	}
	appLogger.Info("Worker exited")
}
