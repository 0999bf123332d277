package http

import (
	"time"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

type TemplateRequest struct {
	Name      string            `json:"name" binding:"required"`
	Questions []QuestionRequest `json:"questions"`

	// PreviousName selects the stored template on replace when it is being
	// renamed to Name.
	PreviousName string `json:"previousName,omitempty"`
}

type QuestionRequest struct {
	Question string `json:"question"`
}

// ToTemplate numbers the questions by their position in the request.
func (r *TemplateRequest) ToTemplate() (*domain.Template, error) {
	questions := make([]string, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = q.Question
	}
	return domain.NewTemplate(r.Name, questions)
}

type TemplateResponse struct {
	Name      string             `json:"name"`
	Questions []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
}

func NewTemplateResponse(t *domain.Template) TemplateResponse {
	resp := TemplateResponse{
		Name:      t.Name,
		Questions: make([]QuestionResponse, len(t.Questions)),
	}
	for i, q := range t.Questions {
		resp.Questions[i] = QuestionResponse{Number: q.Number, Question: q.Question}
	}
	return resp
}

type AuditEntryResponse struct {
	EventID      string    `json:"eventID"`
	Kind         string    `json:"kind"`
	TemplateName string    `json:"templateName"`
	PreviousName string    `json:"previousName,omitempty"`
	RequesterID  string    `json:"requesterID"`
	OccurredAt   time.Time `json:"occurredAt"`
	RecordedAt   time.Time `json:"recordedAt"`
}

func NewAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	data := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		data[i] = AuditEntryResponse{
			EventID:      e.EventID.String(),
			Kind:         string(e.Kind),
			TemplateName: e.TemplateName,
			PreviousName: e.PreviousName,
			RequesterID:  e.RequesterID,
			OccurredAt:   e.OccurredAt,
			RecordedAt:   e.RecordedAt,
		}
	}
	return data
}
