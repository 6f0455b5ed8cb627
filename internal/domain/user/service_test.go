package user

import (
	"context"
	"errors"
	"testing"
)

type fakeUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*User), byEmail: make(map[string]*User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User) error {
	copied := *u
	f.byID[u.ID] = &copied
	f.byEmail[u.Email] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id, name string) error {
	u, ok := f.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Name = name
	return nil
}

func TestRegisterNormalizesAndDefaults(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), "  Maria@Example.COM ", " Maria ", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.Email != "maria@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Name != "Maria" {
		t.Fatalf("expected trimmed name, got %q", u.Name)
	}
	if u.Role != RolePatient {
		t.Fatalf("expected default patient role, got %q", u.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), "maria@example.com", "Maria", RolePatient); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.Register(context.Background(), "MARIA@example.com", "Other", RoleCaregiver)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterInvalidRole(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	if _, err := svc.Register(context.Background(), "x@example.com", "X", "doctor"); err == nil {
		t.Fatalf("expected invalid role to fail")
	}
}

func TestUpdateNameTrimsAndPersists(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), "maria@example.com", "Maria", RolePatient)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := svc.UpdateName(context.Background(), u.ID, "  Maria Lopez  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Maria Lopez" {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}
	if repo.byID[u.ID].Name != "Maria Lopez" {
		t.Fatalf("expected name persisted, got %q", repo.byID[u.ID].Name)
	}
}

func TestUpdateNameUnknownUser(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	_, err := svc.UpdateName(context.Background(), "missing", "New Name")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
