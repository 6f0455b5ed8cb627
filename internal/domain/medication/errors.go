package medication

import "errors"

var ErrMedicationNotFound = errors.New("medication not found")

// ValidationError carries a field-path to message map so form clients can
// highlight the exact inputs that failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
