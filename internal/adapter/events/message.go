package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

// Message is the JSON form of a TemplateEvent shared by the SSE stream, the
// websocket bridge, the webhook sink and the Kafka topic.
type Message struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"`
	Template     *MessageTemplate  `json:"template"`
	PreviousName string            `json:"previousName,omitempty"`
	RequesterID  string            `json:"requesterID"`
	OccurredAt   time.Time         `json:"occurredAt"`
	Carrier      map[string]string `json:"carrier,omitempty"`
}

type MessageTemplate struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Questions []MessageQuestion `json:"questions"`
}

type MessageQuestion struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
}

func NewMessage(e domain.TemplateEvent) Message {
	m := Message{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		PreviousName: e.PreviousName,
		RequesterID:  e.RequesterID,
		OccurredAt:   e.OccurredAt,
	}
	if e.Template != nil {
		m.Template = &MessageTemplate{
			ID:        e.Template.ID,
			Name:      e.Template.Name,
			Questions: make([]MessageQuestion, len(e.Template.Questions)),
		}
		for i, q := range e.Template.Questions {
			m.Template.Questions[i] = MessageQuestion{Number: q.Number, Question: q.Question}
		}
	}
	return m
}

// Event converts the message back into a domain event.
func (m Message) Event() (domain.TemplateEvent, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.TemplateEvent{}, fmt.Errorf("parse event id: %w", err)
	}
	kind := domain.EventKind(m.Kind)
	if !kind.Valid() {
		return domain.TemplateEvent{}, fmt.Errorf("%w: %q", domain.ErrInvalidEventKind, m.Kind)
	}

	e := domain.TemplateEvent{
		ID:           id,
		Kind:         kind,
		PreviousName: m.PreviousName,
		RequesterID:  m.RequesterID,
		OccurredAt:   m.OccurredAt,
	}
	if m.Template != nil {
		e.Template = &domain.Template{
			ID:        m.Template.ID,
			Name:      m.Template.Name,
			Questions: make([]domain.Question, len(m.Template.Questions)),
		}
		for i, q := range m.Template.Questions {
			e.Template.Questions[i] = domain.Question{
				TemplateID: m.Template.ID,
				Number:     q.Number,
				Question:   q.Question,
			}
		}
	}
	return e, nil
}

func Marshal(e domain.TemplateEvent, carrier map[string]string) ([]byte, error) {
	m := NewMessage(e)
	m.Carrier = carrier
	return json.Marshal(m)
}

func Unmarshal(data []byte) (domain.TemplateEvent, map[string]string, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.TemplateEvent{}, nil, fmt.Errorf("decode event message: %w", err)
	}
	e, err := m.Event()
	if err != nil {
		return domain.TemplateEvent{}, nil, err
	}
	return e, m.Carrier, nil
}
