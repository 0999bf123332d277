package port

import (
	"context"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type EventHandler func(ctx context.Context, event domain.TemplateEvent) error

type EventConsumer interface {
	Start(ctx context.Context, handler EventHandler) error
	Stop(ctx context.Context) error
}
