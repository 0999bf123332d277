package port

import (
	"context"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) error
	GetByName(ctx context.Context, name string) (*domain.Template, error)
	GetByID(ctx context.Context, id int64) (*domain.Template, error)
	Exists(ctx context.Context, name string) (bool, error)
	Replace(ctx context.Context, id int64, template *domain.Template) error
	Delete(ctx context.Context, id int64) error
	ListNames(ctx context.Context) ([]string, error)
}
