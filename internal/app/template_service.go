package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/tracing"
)

const (
	opCreate  = "create"
	opReplace = "replace"
	opDelete  = "delete"
)

type TemplateService struct {
	repo       port.TemplateRepository
	publisher  port.EventPublisher
	subscriber port.EventSubscriber
	metrics    *MetricsCollector
	logger     *zap.Logger
}

func NewTemplateService(
	repo port.TemplateRepository,
	publisher port.EventPublisher,
	subscriber port.EventSubscriber,
	metrics *MetricsCollector,
	logger *zap.Logger,
) *TemplateService {
	return &TemplateService{
		repo:       repo,
		publisher:  publisher,
		subscriber: subscriber,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *TemplateService) Create(ctx context.Context, tmpl *domain.Template, requesterID string) (domain.Outcome, error) {
	ctx, span := tracing.Tracer().Start(ctx, "template.create")
	defer span.End()
	span.SetAttributes(tracing.TemplateAttrs(tmpl.Name, requesterID)...)

	if err := tmpl.Validate(); err != nil {
		return s.finish(span, opCreate, domain.OutcomeInvalid, err)
	}

	exists, err := s.repo.Exists(ctx, tmpl.Name)
	if err != nil {
		return s.finish(span, opCreate, domain.OutcomeError, fmt.Errorf("check template exists: %w", err))
	}
	if exists {
		return s.finish(span, opCreate, domain.OutcomeDuplicated, nil)
	}

	if err := s.repo.Create(ctx, tmpl); err != nil {
		if errors.Is(err, domain.ErrDuplicateTemplateName) {
			return s.finish(span, opCreate, domain.OutcomeDuplicated, nil)
		}
		return s.finish(span, opCreate, domain.OutcomeError, fmt.Errorf("create template: %w", err))
	}

	s.publish(ctx, domain.EventCreated, tmpl, "", requesterID)

	s.logger.Info("template created",
		zap.Int64("id", tmpl.ID),
		zap.String("name", tmpl.Name),
		zap.Int("questions", len(tmpl.Questions)),
		zap.String("requester_id", requesterID),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return s.finish(span, opCreate, domain.OutcomeCreated, nil)
}

// Replace swaps the stored template for tmpl. The stored record is looked up
// by previousName when given, which renames it to tmpl.Name, otherwise by
// tmpl.Name.
func (s *TemplateService) Replace(ctx context.Context, tmpl *domain.Template, requesterID, previousName string) (domain.Outcome, error) {
	ctx, span := tracing.Tracer().Start(ctx, "template.replace")
	defer span.End()
	span.SetAttributes(tracing.TemplateAttrs(tmpl.Name, requesterID)...)

	if err := tmpl.Validate(); err != nil {
		return s.finish(span, opReplace, domain.OutcomeInvalid, err)
	}

	key := strings.TrimSpace(previousName)
	if key == "" {
		key = tmpl.Name
	}
	span.SetAttributes(attribute.String("template.lookup_name", key))

	existing, err := s.repo.GetByName(ctx, key)
	if errors.Is(err, domain.ErrTemplateNotFound) {
		return s.finish(span, opReplace, domain.OutcomeNotFound, nil)
	}
	if err != nil {
		return s.finish(span, opReplace, domain.OutcomeError, fmt.Errorf("get template %q: %w", key, err))
	}

	if existing.SameContent(tmpl) {
		return s.finish(span, opReplace, domain.OutcomeNotModified, nil)
	}

	if err := s.repo.Replace(ctx, existing.ID, tmpl); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateTemplateName):
			return s.finish(span, opReplace, domain.OutcomeDuplicated, nil)
		case errors.Is(err, domain.ErrTemplateNotFound):
			return s.finish(span, opReplace, domain.OutcomeNotFound, nil)
		}
		return s.finish(span, opReplace, domain.OutcomeError, fmt.Errorf("replace template %q: %w", key, err))
	}

	renamedFrom := ""
	if existing.Name != tmpl.Name {
		renamedFrom = existing.Name
	}
	s.publish(ctx, domain.EventReplaced, tmpl, renamedFrom, requesterID)

	s.logger.Info("template replaced",
		zap.Int64("id", tmpl.ID),
		zap.String("name", tmpl.Name),
		zap.String("previous_name", existing.Name),
		zap.Int("questions", len(tmpl.Questions)),
		zap.String("requester_id", requesterID),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return s.finish(span, opReplace, domain.OutcomeReplaced, nil)
}

// Get returns the template stored under name. A missing template is reported
// through found, not as an error.
func (s *TemplateService) Get(ctx context.Context, name string) (*domain.Template, bool, error) {
	tmpl, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrTemplateNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tmpl, true, nil
}

func (s *TemplateService) Names(ctx context.Context) ([]string, error) {
	return s.repo.ListNames(ctx)
}

func (s *TemplateService) Delete(ctx context.Context, name, requesterID string) (domain.Outcome, error) {
	ctx, span := tracing.Tracer().Start(ctx, "template.delete")
	defer span.End()
	span.SetAttributes(tracing.TemplateAttrs(name, requesterID)...)

	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrTemplateNotFound) {
		return s.finish(span, opDelete, domain.OutcomeNotFound, nil)
	}
	if err != nil {
		return s.finish(span, opDelete, domain.OutcomeError, fmt.Errorf("get template %q: %w", name, err))
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return s.finish(span, opDelete, domain.OutcomeNotFound, nil)
		}
		return s.finish(span, opDelete, domain.OutcomeError, fmt.Errorf("delete template %q: %w", name, err))
	}

	s.publish(ctx, domain.EventDeleted, existing, "", requesterID)

	s.logger.Info("template deleted",
		zap.Int64("id", existing.ID),
		zap.String("name", existing.Name),
		zap.String("requester_id", requesterID),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return s.finish(span, opDelete, domain.OutcomeDeleted, nil)
}

// Subscribe registers a live subscriber. Only events published after the call
// are delivered.
func (s *TemplateService) Subscribe() port.Subscription {
	return s.subscriber.Subscribe()
}

func (s *TemplateService) publish(ctx context.Context, kind domain.EventKind, tmpl *domain.Template, previousName, requesterID string) {
	event, err := domain.NewTemplateEvent(kind, tmpl, requesterID)
	if err != nil {
		s.logger.Error("build template event", zap.Error(err))
		return
	}
	event.PreviousName = previousName

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish template event",
			zap.String("event_id", event.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("name", tmpl.Name),
			zap.Error(err),
		)
	}
	s.metrics.RecordPublished(kind)
}

func (s *TemplateService) finish(span trace.Span, operation string, outcome domain.Outcome, err error) (domain.Outcome, error) {
	span.SetAttributes(attribute.String("template.outcome", outcome.String()))
	s.metrics.RecordOperation(operation, outcome)

	switch outcome {
	case domain.OutcomeError:
		tracing.RecordError(span, err)
		s.logger.Error("template operation failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	case domain.OutcomeInvalid:
		s.logger.Debug("template rejected",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
	return outcome, err
}
