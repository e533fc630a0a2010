package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-inventory-api.git/internal/alerts"
	"github.com/ariefcatur/go-inventory-api.git/internal/config"
	kafkax "github.com/ariefcatur/go-inventory-api.git/internal/kafka"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
	"github.com/ariefcatur/go-inventory-api.git/internal/postgres"
	"github.com/ariefcatur/go-inventory-api.git/internal/redisx"
	"github.com/ariefcatur/go-inventory-api.git/internal/reports"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &alerts.Service{
		Stock:       &reports.Repo{DB: db},
		Redis:       rdb,
		Log:         logger,
		Threshold:   cfg.LowStockThreshold,
		ServiceName: cfg.ServiceName + "-alerts",
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AlertsGroup, orders.TopicOrderPlaced, cfg.AlertsWorkers, logger)

	go func() {
		logger.Info("alerts consumer started",
			zap.String("group", cfg.AlertsGroup),
			zap.String("topic", orders.TopicOrderPlaced),
			zap.Int("workers", cfg.AlertsWorkers),
		)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer...")
	cancel()
}
