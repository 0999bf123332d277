package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	httpAdapter "github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/http"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/queue"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/storage"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/webhook"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/ws"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/app"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/circuitbreaker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, "devmarkt-templates", version, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	if err := storage.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}
	log.Info("database migrations applied", zap.String("driver", cfg.DatabaseDriver))

	db, err := storage.NewConnection(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	metrics := app.NewMetricsCollector()
	broadcaster := events.NewBroadcaster(cfg.EventBuffer, metrics, log)

	publishers := []port.EventPublisher{broadcaster}
	if cfg.KafkaEnabled() {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer func() { _ = producer.Close() }()
		publishers = append(publishers, producer)
		log.Info("publishing template events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}
	if cfg.WebhookURL != "" {
		publishers = append(publishers, webhook.NewNotifier(cfg.WebhookURL, circuitbreaker.DefaultSettings(), log))
		log.Info("posting template events to webhook", zap.String("url", cfg.WebhookURL))
	}

	templateService := app.NewTemplateService(
		storage.NewTemplateRepo(db),
		events.NewFanout(log, publishers...),
		broadcaster,
		metrics,
		log,
	)
	auditService := app.NewAuditService(storage.NewAuditRepo(db), metrics, log)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		TemplateHandler:  httpAdapter.NewTemplateHandler(templateService, cfg.BaseURL),
		EventsHandler:    httpAdapter.NewEventsHandler(broadcaster, 0, log),
		AuditHandler:     httpAdapter.NewAuditHandler(auditService),
		HealthHandler:    httpAdapter.NewHealthHandler(db, cfg.KafkaBrokers),
		MetricsHandler:   httpAdapter.NewMetricsHandler(metrics),
		WebSocketHandler: httpAdapter.NewWebSocketHandler(ws.NewHub(broadcaster, log)),
		RateLimit:        cfg.RateLimit,
		Logger:           log,
	})

	// No write timeout: event streams stay open for as long as clients listen.
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(broadcaster.Close)

	go func() {
		log.Info("starting http server", zap.String("port", cfg.AppPort), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
