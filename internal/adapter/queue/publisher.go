package queue

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

// Producer writes template events to a single topic keyed by template name,
// so every change to one template lands on the same partition in order.
type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	p := &Producer{topic: topic, logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

// Publish hands the event to the async writer. Broker failures surface in
// the completion callback, never to the caller.
func (p *Producer) Publish(ctx context.Context, event domain.TemplateEvent) error {
	ctx, span := tracing.Tracer().Start(ctx, "kafka.produce")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.topic),
		attribute.String("messaging.operation.type", "publish"),
	)
	span.SetAttributes(tracing.EventAttrs(event.ID.String(), string(event.Kind), event.TemplateName())...)

	msg, err := newMessage(ctx, event)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("enqueue event %s: %w", event.ID, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		p.logger.Error("kafka delivery failed",
			zap.String("topic", p.topic),
			zap.ByteString("key", m.Key),
			zap.Error(err),
		)
	}
}

func newMessage(ctx context.Context, event domain.TemplateEvent) (kafka.Message, error) {
	value, err := events.Marshal(event, propagateTraceContext(ctx))
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.TemplateName()),
		Value: value,
	}, nil
}

func propagateTraceContext(ctx context.Context) map[string]string {
	carrier := make(map[string]string)
	propagation.TraceContext{}.Inject(ctx, propagation.MapCarrier(carrier))
	return carrier
}
