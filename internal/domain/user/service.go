package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

// Register creates a local user row for an identity issued by the external
// auth service. Role is fixed at creation.
func (s *Service) Register(ctx context.Context, email, name, role string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if role == "" {
		role = RolePatient
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	u := User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  role,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) UpdateName(ctx context.Context, id, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
