package caregiver

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, relationship *Relationship) error
	// GetByID returns the relationship regardless of state.
	GetByID(ctx context.Context, id string) (*Relationship, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Relationship, error)
	// ActiveVerifiedExists reports whether caregiverID holds a verified,
	// active grant on patientID.
	ActiveVerifiedExists(ctx context.Context, caregiverID, patientID string) (bool, error)
	ActiveExists(ctx context.Context, caregiverID, patientID string) (bool, error)
	SetVerified(ctx context.Context, id string) error
	SetInactive(ctx context.Context, id string) error
	ListPatients(ctx context.Context, caregiverID string) ([]PatientSummary, error)
	ListCaregivers(ctx context.Context, patientID string) ([]CaregiverSummary, error)
}
