package adherence

import "errors"

var (
	ErrRecordNotFound     = errors.New("adherence record not found")
	ErrMedicationNotFound = errors.New("medication not found")
)

// ValidationError maps flattened field paths (e.g. "records.2.status") to
// messages. Bulk validation reports every bad record before anything is
// written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
