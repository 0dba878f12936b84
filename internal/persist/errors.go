package persist

import "fmt"

// Stage identifies which save step failed.
type Stage string

const (
	StageReceipt      Stage = "receipt"
	StageSubscription Stage = "subscription"
	StageLink         Stage = "link"
)

// ValidationError reports a draft field that failed pre-save validation.
// Nothing has been written when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StageError wraps a storage failure, tagged with the stage that failed.
// Rows written by earlier stages remain in the database.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("save failed at %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
