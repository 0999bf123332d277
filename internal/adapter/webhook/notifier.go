package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/circuitbreaker"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/logger"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

const deliveryTimeout = 5 * time.Second

// Notifier posts every template event as JSON to a configured URL.
type Notifier struct {
	url        string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	logger     *zap.Logger
}

func NewNotifier(url string, settings circuitbreaker.Settings, logger *zap.Logger) *Notifier {
	return &Notifier{
		url: url,
		httpClient: &http.Client{
			Timeout:   deliveryTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New("webhook", settings),
		logger:  logger,
	}
}

// Publish delivers in the background so a slow receiver never delays the
// request that caused the event. Failures are logged.
func (n *Notifier) Publish(ctx context.Context, event domain.TemplateEvent) error {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()
		if err := n.Deliver(ctx, event); err != nil {
			n.logger.Warn("webhook delivery failed",
				zap.String("event_id", event.ID.String()),
				zap.String("kind", string(event.Kind)),
				zap.String("breaker_state", n.breaker.State()),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Deliver posts event synchronously through the circuit breaker.
func (n *Notifier) Deliver(ctx context.Context, event domain.TemplateEvent) error {
	err := n.breaker.Execute(func() error {
		return n.send(ctx, event)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return domain.ErrCircuitOpen
	}
	return err
}

func (n *Notifier) send(ctx context.Context, event domain.TemplateEvent) error {
	ctx, span := tracing.Tracer().Start(ctx, "webhook.send")
	defer span.End()

	span.SetAttributes(attribute.String("webhook.url", n.url))
	span.SetAttributes(tracing.EventAttrs(event.ID.String(), string(event.Kind), event.TemplateName())...)

	body, err := events.Marshal(event, nil)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.ID.String())
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: %v", domain.ErrSinkUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if isTransientError(resp.StatusCode) {
		err := fmt.Errorf("%w: status %d", domain.ErrSinkUnavailable, resp.StatusCode)
		tracing.RecordError(span, err)
		return err
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("webhook rejected event: status %d", resp.StatusCode)
		tracing.RecordError(span, err)
		return err
	}
	return nil
}

func isTransientError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
