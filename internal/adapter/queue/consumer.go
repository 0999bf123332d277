package queue

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

const (
	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = 30 * time.Second
	retryJitter    = 1000
)

type ConsumerConfig struct {
	Brokers []string
	Group   string
	Topic   string
	Rate    int
	Logger  *zap.Logger
}

type Consumer struct {
	cfg     ConsumerConfig
	reader  *kafka.Reader
	writer  *kafka.Writer
	limiter *rate.Limiter
	logger  *zap.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	return &Consumer{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		limiter: rate.NewLimiter(limit, max(cfg.Rate, 1)),
		logger:  cfg.Logger,
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (c *Consumer) Start(ctx context.Context, handler port.EventHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.cfg.Brokers,
		Topic:          c.cfg.Topic,
		GroupID:        c.cfg.Group,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	c.wg.Add(1)
	go c.consume(ctx, handler)

	c.logger.Info("kafka consumer started",
		zap.Strings("brokers", c.cfg.Brokers),
		zap.String("group", c.cfg.Group),
		zap.String("topic", c.cfg.Topic),
	)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) Stop(_ context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var firstErr error
	if c.reader != nil {
		firstErr = c.reader.Close()
	}
	if err := c.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Consumer) consume(ctx context.Context, handler port.EventHandler) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed",
				zap.String("topic", c.cfg.Topic),
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}

		event, carrier, err := events.Unmarshal(msg.Value)
		if err != nil {
			c.logger.Error("discarding undecodable message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		c.handle(ctx, msg, event, carrier, handler)
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, event domain.TemplateEvent, carrier map[string]string, handler port.EventHandler) {
	msgCtx := ctx
	if len(carrier) > 0 {
		msgCtx = propagation.TraceContext{}.Extract(ctx, propagation.MapCarrier(carrier))
	}

	msgCtx, span := tracing.Tracer().Start(msgCtx, "kafka.consume")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.source.name", msg.Topic),
		attribute.String("messaging.operation.type", "receive"),
		attribute.String("messaging.consumer.group.id", c.cfg.Group),
		attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		attribute.Int("messaging.kafka.destination.partition", msg.Partition),
	)
	span.SetAttributes(tracing.EventAttrs(event.ID.String(), string(event.Kind), event.TemplateName())...)

	if err := c.limiter.Wait(msgCtx); err != nil {
		return
	}

	if err := handler(msgCtx, event); err != nil {
		span.SetAttributes(attribute.Bool("audit.will_retry", true))
		tracing.RecordError(span, err)
		c.retry(ctx, msg, event)
	}
}

// retry puts the original message back on the topic after a jittered delay.
// The audit store ignores duplicates, so a redelivery is harmless.
func (c *Consumer) retry(ctx context.Context, original kafka.Message, event domain.TemplateEvent) {
	select {
	case <-time.After(retryDelay()):
	case <-ctx.Done():
		return
	}

	if err := c.writer.WriteMessages(ctx, kafka.Message{
		Key:   original.Key,
		Value: original.Value,
	}); err != nil {
		c.logger.Error("retry re-enqueue failed",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}

func retryDelay() time.Duration {
	jitter := time.Duration(rand.Int64N(retryJitter)) * time.Millisecond
	return min(retryBaseDelay+jitter, retryMaxDelay)
}
