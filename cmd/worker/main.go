package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skyline/config"
	"github.com/Domenick1991/skyline/internal/email"
	"github.com/Domenick1991/skyline/internal/kafka"
	"github.com/Domenick1991/skyline/internal/logger"
	"go.uber.org/zap"
)

// The worker drains the notifications topic and delivers each message by
// email.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 {
		zlog.Fatal("KAFKA_BROKERS is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog.Named("kafka"))
	defer consumer.Close()

	sender := email.NewSender(email.NewLogTransport(zlog.Named("email")))

	zlog.Info("worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic))

	if err := consumer.ConsumeNotifications(ctx, sender.Send); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("consumer stopped", zap.Error(err))
	}
	zlog.Info("worker stopped")
}
