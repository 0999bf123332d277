package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

type auditRow struct {
	ID           int64  `db:"id"`
	EventID      string `db:"event_id"`
	Kind         string `db:"kind"`
	TemplateName string `db:"template_name"`
	PreviousName string `db:"previous_name"`
	RequesterID  string `db:"requester_id"`
	OccurredAt   int64  `db:"occurred_at"`
	RecordedAt   int64  `db:"recorded_at"`
}

func (r *AuditRepo) Record(ctx context.Context, e domain.AuditEntry) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO template_audit
		(event_id, kind, template_name, previous_name, requester_id, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (event_id) DO NOTHING`),
		e.EventID.String(), string(e.Kind), e.TemplateName, e.PreviousName, e.RequesterID,
		toMillis(e.OccurredAt), toMillis(e.RecordedAt),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *AuditRepo) ListByTemplate(ctx context.Context, name string, limit int) ([]domain.AuditEntry, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind(`SELECT id, event_id, kind, template_name, previous_name, requester_id, occurred_at, recorded_at
		FROM template_audit
		WHERE template_name = ? OR previous_name = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`),
		name, name, limit,
	)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		eventID, err := uuid.Parse(row.EventID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.AuditEntry{
			ID:           row.ID,
			EventID:      eventID,
			Kind:         domain.EventKind(row.Kind),
			TemplateName: row.TemplateName,
			PreviousName: row.PreviousName,
			RequesterID:  row.RequesterID,
			OccurredAt:   fromMillis(row.OccurredAt),
			RecordedAt:   fromMillis(row.RecordedAt),
		})
	}
	return entries, nil
}
