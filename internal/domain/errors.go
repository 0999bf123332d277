package domain

import "errors"

var (
	ErrEmptyTemplateName       = errors.New("template name is required")
	ErrEmptyQuestion           = errors.New("question text is required")
	ErrNegativeQuestionNumber  = errors.New("question number must not be negative")
	ErrDuplicateQuestionNumber = errors.New("question number is used more than once")
	ErrTemplateNotFound        = errors.New("template not found")
	ErrDuplicateTemplateName   = errors.New("template name already exists")
	ErrInvalidEventKind        = errors.New("invalid template event kind")
	ErrSinkUnavailable         = errors.New("event sink unavailable")
	ErrCircuitOpen             = errors.New("circuit breaker is open")
)
