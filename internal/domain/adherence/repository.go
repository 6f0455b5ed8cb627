package adherence

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, record *Record) error
	List(ctx context.Context, userID string, filter ListFilter) ([]Record, int64, error)
	// MedicationOwned reports whether the active medication belongs to userID.
	MedicationOwned(ctx context.Context, medicationID, userID string) (bool, error)
	// DecrementStock atomically takes one unit off the medication's
	// remaining quantity, clamped at zero. Safe under concurrent intake
	// reports for the same medication.
	DecrementStock(ctx context.Context, medicationID string) error
}
