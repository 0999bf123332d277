package port

import (
	"context"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type AuditRepository interface {
	// Record stores the entry once per event id and reports whether a new
	// row was written.
	Record(ctx context.Context, entry domain.AuditEntry) (bool, error)
	ListByTemplate(ctx context.Context, name string, limit int) ([]domain.AuditEntry, error)
}
