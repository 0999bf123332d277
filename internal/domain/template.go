package domain

import (
	"fmt"
	"strings"
	"time"
)

type Question struct {
	ID         int64  `db:"id"`
	TemplateID int64  `db:"template_id"`
	Number     int    `db:"number"`
	Question   string `db:"question"`
}

type Template struct {
	ID        int64
	Name      string
	Questions []Question
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTemplate builds a template whose questions are numbered by position.
func NewTemplate(name string, questions []string) (*Template, error) {
	t := &Template{
		Name:      strings.TrimSpace(name),
		Questions: make([]Question, len(questions)),
	}
	for i, q := range questions {
		t.Questions[i] = Question{Number: i, Question: strings.TrimSpace(q)}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTemplateName
	}

	seen := make(map[int]struct{}, len(t.Questions))
	for i, q := range t.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d", ErrEmptyQuestion, i)
		}
		if q.Number < 0 {
			return fmt.Errorf("%w: question %d has number %d", ErrNegativeQuestionNumber, i, q.Number)
		}
		if _, ok := seen[q.Number]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateQuestionNumber, q.Number)
		}
		seen[q.Number] = struct{}{}
	}
	return nil
}

// SameContent reports whether both templates carry the same name and the
// same questions in the same order. Store-assigned ids and timestamps are
// ignored.
func (t *Template) SameContent(other *Template) bool {
	if other == nil || t.Name != other.Name || len(t.Questions) != len(other.Questions) {
		return false
	}
	for i := range t.Questions {
		a, b := t.Questions[i], other.Questions[i]
		if a.Number != b.Number || a.Question != b.Question {
			return false
		}
	}
	return true
}

func (t *Template) QuestionTexts() []string {
	texts := make([]string, len(t.Questions))
	for i, q := range t.Questions {
		texts[i] = q.Question
	}
	return texts
}

// Clone returns a deep copy so callers can hand templates to subscribers
// without sharing the question slice.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.Questions = append([]Question(nil), t.Questions...)
	return &c
}
