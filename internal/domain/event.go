package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventCreated  EventKind = "created"
	EventReplaced EventKind = "replaced"
	EventDeleted  EventKind = "deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventCreated, EventReplaced, EventDeleted:
		return true
	}
	return false
}

type TemplateEvent struct {
	ID           uuid.UUID
	Kind         EventKind
	Template     *Template
	PreviousName string
	RequesterID  string
	OccurredAt   time.Time
}

func NewTemplateEvent(kind EventKind, t *Template, requesterID string) (TemplateEvent, error) {
	if !kind.Valid() {
		return TemplateEvent{}, ErrInvalidEventKind
	}
	return TemplateEvent{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        kind,
		Template:    t.Clone(),
		RequesterID: requesterID,
		OccurredAt:  time.Now().UTC(),
	}, nil
}

// TemplateName is the name of the template after the change, or the removed
// name for a delete.
func (e TemplateEvent) TemplateName() string {
	if e.Template == nil {
		return ""
	}
	return e.Template.Name
}

type AuditEntry struct {
	ID           int64
	EventID      uuid.UUID
	Kind         EventKind
	TemplateName string
	PreviousName string
	RequesterID  string
	OccurredAt   time.Time
	RecordedAt   time.Time
}

func NewAuditEntry(e TemplateEvent) AuditEntry {
	return AuditEntry{
		EventID:      e.ID,
		Kind:         e.Kind,
		TemplateName: e.TemplateName(),
		PreviousName: e.PreviousName,
		RequesterID:  e.RequesterID,
		OccurredAt:   e.OccurredAt,
		RecordedAt:   time.Now().UTC(),
	}
}
