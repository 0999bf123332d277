package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
)

// Fanout forwards each event to every publisher in order. A failing
// publisher does not stop the others.
type Fanout struct {
	publishers []port.EventPublisher
	logger     *zap.Logger
}

func NewFanout(logger *zap.Logger, publishers ...port.EventPublisher) *Fanout {
	active := make([]port.EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Fanout{publishers: active, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, event domain.TemplateEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			f.logger.Warn("event publisher failed",
				zap.String("event_id", event.ID.String()),
				zap.String("kind", string(event.Kind)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
