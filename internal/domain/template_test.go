package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate_Valid(t *testing.T) {
	tmpl, err := NewTemplate(" test ", []string{"How are you?", "How old are you?"})

	require.NoError(t, err)
	assert.Equal(t, "test", tmpl.Name)
	require.Len(t, tmpl.Questions, 2)
	assert.Equal(t, 0, tmpl.Questions[0].Number)
	assert.Equal(t, "How are you?", tmpl.Questions[0].Question)
	assert.Equal(t, 1, tmpl.Questions[1].Number)
	assert.Equal(t, "How old are you?", tmpl.Questions[1].Question)
}

func TestNewTemplate_NoQuestions(t *testing.T) {
	tmpl, err := NewTemplate("empty", nil)

	require.NoError(t, err)
	assert.Empty(t, tmpl.Questions)
}

func TestNewTemplate_EmptyName(t *testing.T) {
	_, err := NewTemplate("   ", []string{"How are you?"})

	assert.ErrorIs(t, err, ErrEmptyTemplateName)
}

func TestNewTemplate_BlankQuestion(t *testing.T) {
	_, err := NewTemplate("test", []string{"How are you?", " "})

	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestTemplate_Validate_NegativeNumber(t *testing.T) {
	tmpl := &Template{Name: "test", Questions: []Question{{Number: -1, Question: "Why?"}}}

	assert.ErrorIs(t, tmpl.Validate(), ErrNegativeQuestionNumber)
}

func TestTemplate_Validate_DuplicateNumber(t *testing.T) {
	tmpl := &Template{Name: "test", Questions: []Question{
		{Number: 0, Question: "Why?"},
		{Number: 0, Question: "How?"},
	}}

	assert.ErrorIs(t, tmpl.Validate(), ErrDuplicateQuestionNumber)
}

func TestTemplate_SameContent(t *testing.T) {
	a, _ := NewTemplate("test", []string{"How are you?", "How old are you?"})
	b, _ := NewTemplate("test", []string{"How are you?", "How old are you?"})
	b.ID = 42
	b.Questions[0].ID = 7

	assert.True(t, a.SameContent(b))
}

func TestTemplate_SameContent_Differs(t *testing.T) {
	base, _ := NewTemplate("test", []string{"How are you?", "How old are you?"})
	renamed, _ := NewTemplate("newName", []string{"How are you?", "How old are you?"})
	reordered, _ := NewTemplate("test", []string{"How old are you?", "How are you?"})
	shorter, _ := NewTemplate("test", []string{"How are you?"})

	assert.False(t, base.SameContent(renamed))
	assert.False(t, base.SameContent(reordered))
	assert.False(t, base.SameContent(shorter))
	assert.False(t, base.SameContent(nil))
}

func TestTemplate_Clone(t *testing.T) {
	orig, _ := NewTemplate("test", []string{"How are you?"})

	clone := orig.Clone()
	clone.Questions[0].Question = "changed"

	assert.Equal(t, "How are you?", orig.Questions[0].Question)
	assert.Nil(t, (*Template)(nil).Clone())
}

func TestNewTemplateEvent(t *testing.T) {
	tmpl, _ := NewTemplate("test", []string{"How are you?"})

	ev, err := NewTemplateEvent(EventCreated, tmpl, "1234")

	require.NoError(t, err)
	assert.Equal(t, EventCreated, ev.Kind)
	assert.Equal(t, "test", ev.TemplateName())
	assert.Equal(t, "1234", ev.RequesterID)
	assert.NotEqual(t, [16]byte{}, [16]byte(ev.ID))
	assert.NotSame(t, tmpl, ev.Template)
}

func TestNewTemplateEvent_InvalidKind(t *testing.T) {
	tmpl, _ := NewTemplate("test", nil)

	_, err := NewTemplateEvent(EventKind("renamed"), tmpl, "1234")

	assert.ErrorIs(t, err, ErrInvalidEventKind)
}

func TestNewAuditEntry(t *testing.T) {
	tmpl, _ := NewTemplate("newName", nil)
	ev, _ := NewTemplateEvent(EventReplaced, tmpl, "34")
	ev.PreviousName = "test"

	entry := NewAuditEntry(ev)

	assert.Equal(t, ev.ID, entry.EventID)
	assert.Equal(t, EventReplaced, entry.Kind)
	assert.Equal(t, "newName", entry.TemplateName)
	assert.Equal(t, "test", entry.PreviousName)
	assert.Equal(t, "34", entry.RequesterID)
}
