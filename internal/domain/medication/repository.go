package medication

import "context"

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	// GetOwned returns the medication only when it belongs to userID;
	// otherwise ErrMedicationNotFound, indistinguishable from absent.
	GetOwned(ctx context.Context, id, userID string) (*Medication, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]Medication, int64, error)
	ListActive(ctx context.Context, userID string) ([]Medication, error)
	Update(ctx context.Context, m *Medication) error
	Deactivate(ctx context.Context, id, userID string) error
}
