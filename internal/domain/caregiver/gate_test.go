package caregiver

import (
	"context"
	"testing"

	"github.com/LoreWasTaken/caresync/internal/domain/user"
)

func TestGateAuthorize(t *testing.T) {
	repo := newFakeRelationshipRepo()
	repo.add(&Relationship{
		ID:          "rel-verified",
		CaregiverID: "cg-1",
		PatientID:   "pt-1",
		IsVerified:  true,
		IsActive:    true,
	})
	repo.add(&Relationship{
		ID:          "rel-pending",
		CaregiverID: "cg-2",
		PatientID:   "pt-1",
		IsVerified:  false,
		IsActive:    true,
	})
	repo.add(&Relationship{
		ID:          "rel-closed",
		CaregiverID: "cg-3",
		PatientID:   "pt-1",
		IsVerified:  true,
		IsActive:    false,
	})

	gate := NewGate(repo)

	cases := []struct {
		name      string
		requester *user.User
		target    string
		want      bool
	}{
		{"self", &user.User{ID: "pt-1", Role: user.RolePatient}, "pt-1", true},
		{"admin", &user.User{ID: "admin-1", Role: user.RoleAdmin}, "pt-1", true},
		{"provider", &user.User{ID: "hp-1", Role: user.RoleHealthcareProvider}, "pt-1", true},
		{"verified caregiver", &user.User{ID: "cg-1", Role: user.RoleCaregiver}, "pt-1", true},
		{"pending caregiver", &user.User{ID: "cg-2", Role: user.RoleCaregiver}, "pt-1", false},
		{"removed caregiver", &user.User{ID: "cg-3", Role: user.RoleCaregiver}, "pt-1", false},
		{"unrelated caregiver", &user.User{ID: "cg-9", Role: user.RoleCaregiver}, "pt-1", false},
		{"other patient", &user.User{ID: "pt-2", Role: user.RolePatient}, "pt-1", false},
		{"nil requester", nil, "pt-1", false},
		{"empty target", &user.User{ID: "pt-1", Role: user.RolePatient}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gate.Authorize(context.Background(), tc.requester, tc.target)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGateRequireDenied(t *testing.T) {
	gate := NewGate(newFakeRelationshipRepo())
	requester := &user.User{ID: "pt-2", Role: user.RolePatient}

	err := gate.Require(context.Background(), requester, "pt-1")
	if err != ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}
