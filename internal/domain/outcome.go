package domain

// Outcome is the result of a template lifecycle operation.
type Outcome string

const (
	OutcomeCreated     Outcome = "CREATED"
	OutcomeDuplicated  Outcome = "DUPLICATED"
	OutcomeReplaced    Outcome = "REPLACED"
	OutcomeNotModified Outcome = "NOT_MODIFIED"
	OutcomeNotFound    Outcome = "NOT_FOUND"
	OutcomeDeleted     Outcome = "DELETED"
	OutcomeInvalid     Outcome = "INVALID"
	OutcomeError       Outcome = "ERROR"
)

func (o Outcome) String() string {
	return string(o)
}
