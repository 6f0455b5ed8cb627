package caregiver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LoreWasTaken/caresync/internal/domain/user"
	"github.com/google/uuid"
)

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users UserLookup
}

func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

type InviteInput struct {
	PatientID        string
	CaregiverEmail   string
	RelationshipType string
	Permissions      []string
}

// Invite creates a pending relationship from a patient to a caregiver. The
// caregiver must already have an account with the caregiver role. A second
// invite while one is still active is a conflict.
func (s *Service) Invite(ctx context.Context, input InviteInput) (*Relationship, error) {
	email := strings.ToLower(strings.TrimSpace(input.CaregiverEmail))
	if email == "" {
		return nil, fmt.Errorf("caregiver email is required")
	}

	invited, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrCaregiverNotFound
		}
		return nil, err
	}
	if invited.Role != user.RoleCaregiver {
		return nil, ErrNotCaregiverRole
	}

	var result Relationship
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.ActiveExists(ctx, invited.ID, input.PatientID)
		if err != nil {
			return err
		}
		if exists {
			return ErrRelationshipExists
		}

		relationship := Relationship{
			ID:               uuid.NewString(),
			CaregiverID:      invited.ID,
			PatientID:        input.PatientID,
			RelationshipType: strings.TrimSpace(input.RelationshipType),
			Permissions:      strings.Join(input.Permissions, ","),
			IsVerified:       false,
			IsActive:         true,
		}
		if err := tx.Create(ctx, &relationship); err != nil {
			return err
		}

		result = relationship
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Accept marks a pending invite as verified. Only the invited caregiver may
// accept, and only while the row is still active.
func (s *Service) Accept(ctx context.Context, relationshipID, caregiverID string) (*Relationship, error) {
	return s.transition(ctx, relationshipID, func(r *Relationship) error {
		if r.CaregiverID != caregiverID {
			return ErrNotParticipant
		}
		r.IsVerified = true
		return nil
	}, func(tx Repository, id string) error {
		return tx.SetVerified(ctx, id)
	})
}

// Decline closes a pending invite. Terminal: the row stays inactive forever.
func (s *Service) Decline(ctx context.Context, relationshipID, caregiverID string) (*Relationship, error) {
	return s.transition(ctx, relationshipID, func(r *Relationship) error {
		if r.CaregiverID != caregiverID {
			return ErrNotParticipant
		}
		r.IsActive = false
		return nil
	}, func(tx Repository, id string) error {
		return tx.SetInactive(ctx, id)
	})
}

// Remove deactivates a relationship. Either party may end it.
func (s *Service) Remove(ctx context.Context, relationshipID, requesterID string) (*Relationship, error) {
	return s.transition(ctx, relationshipID, func(r *Relationship) error {
		if r.CaregiverID != requesterID && r.PatientID != requesterID {
			return ErrNotParticipant
		}
		r.IsActive = false
		return nil
	}, func(tx Repository, id string) error {
		return tx.SetInactive(ctx, id)
	})
}

// transition loads the row under a lock, checks it is still active, applies
// the state change and persists it, all in one transaction. A transition on
// an already-closed relationship reports not found rather than leaking that
// the row ever existed.
func (s *Service) transition(ctx context.Context, relationshipID string, apply func(*Relationship) error, persist func(Repository, string) error) (*Relationship, error) {
	var result Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		relationship, err := tx.GetByIDForUpdate(ctx, relationshipID)
		if err != nil {
			return err
		}
		if !relationship.IsActive {
			return ErrRelationshipNotFound
		}
		if err := apply(relationship); err != nil {
			return err
		}
		if err := persist(tx, relationshipID); err != nil {
			return err
		}
		result = *relationship
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) ListPatients(ctx context.Context, caregiverID string) ([]PatientSummary, error) {
	return s.repo.ListPatients(ctx, caregiverID)
}

func (s *Service) ListCaregivers(ctx context.Context, patientID string) ([]CaregiverSummary, error) {
	return s.repo.ListCaregivers(ctx, patientID)
}
