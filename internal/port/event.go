package port

import (
	"context"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.TemplateEvent) error
}

type Subscription interface {
	Events() <-chan domain.TemplateEvent
	Close()
}

type EventSubscriber interface {
	Subscribe() Subscription
}
