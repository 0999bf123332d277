package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

const defaultHistoryLimit = 100

type AuditService struct {
	repo    port.AuditRepository
	metrics *MetricsCollector
	logger  *zap.Logger
}

func NewAuditService(repo port.AuditRepository, metrics *MetricsCollector, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, metrics: metrics, logger: logger}
}

// Record is the consumer handler for template events. Redelivered events are
// accepted without writing a second row.
func (s *AuditService) Record(ctx context.Context, event domain.TemplateEvent) error {
	ctx, span := tracing.Tracer().Start(ctx, "audit.record")
	defer span.End()

	span.SetAttributes(
		attribute.String("event.id", event.ID.String()),
		attribute.String("event.kind", string(event.Kind)),
	)
	span.SetAttributes(tracing.TemplateAttrs(event.TemplateName(), event.RequesterID)...)

	if !event.Kind.Valid() {
		tracing.RecordError(span, domain.ErrInvalidEventKind)
		return fmt.Errorf("%w: %q", domain.ErrInvalidEventKind, event.Kind)
	}

	written, err := s.repo.Record(ctx, domain.NewAuditEntry(event))
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("record audit entry: %w", err)
	}
	s.metrics.RecordAudit(event.Kind, written)

	if !written {
		s.logger.Debug("audit entry already recorded", zap.String("event_id", event.ID.String()))
		return nil
	}

	s.logger.Info("audit entry recorded",
		zap.String("event_id", event.ID.String()),
		zap.String("kind", string(event.Kind)),
		zap.String("name", event.TemplateName()),
		zap.String("requester_id", event.RequesterID),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return nil
}

func (s *AuditService) History(ctx context.Context, name string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByTemplate(ctx, name, limit)
}
