package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/queue"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/storage"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/app"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/config"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/logger"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.KafkaEnabled() {
		log.Fatal("KAFKA_BROKERS is required for the audit worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, "devmarkt-templates-worker", version, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	if err := storage.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}

	db, err := storage.NewConnection(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	auditService := app.NewAuditService(storage.NewAuditRepo(db), app.NewMetricsCollector(), log)

	consumer := queue.NewConsumer(queue.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Group:   cfg.KafkaConsumerGroup,
		Topic:   cfg.KafkaTopic,
		Rate:    cfg.AuditRateLimit,
		Logger:  log,
	})

	go func() {
		if err := consumer.Start(ctx, auditService.Record); err != nil {
			if ctx.Err() == nil {
				log.Error("consumer stopped unexpectedly", zap.Error(err))
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := consumer.Stop(shutdownCtx); err != nil {
		log.Error("consumer shutdown error", zap.Error(err))
	}

	log.Info("worker stopped")
}
