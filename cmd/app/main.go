package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyline/config"
	"github.com/Domenick1991/skyline/internal/bootstrap"
	"github.com/Domenick1991/skyline/internal/logger"
	"github.com/Domenick1991/skyline/internal/tracing"
	"go.uber.org/zap"
)

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

	if cfg.Tracing.JaegerEndpoint != "" {
		tp, err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			zlog.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("init application", zap.Error(err))
	}
	defer app.Close()

	app.Start(ctx)

	if err := bootstrap.Run(ctx, cfg, app.Router, zlog); err != nil {
		zlog.Error("server error", zap.Error(err))
	}
}
