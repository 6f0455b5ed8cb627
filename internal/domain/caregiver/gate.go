package caregiver

import (
	"context"

	"github.com/LoreWasTaken/caresync/internal/domain/user"
)

// Gate decides whether a requester may act on a target user's data. It is a
// pure read over current relationship state and is evaluated before every
// cross-user operation.
type Gate struct {
	repo Repository
}

func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

// Authorize applies the access rules in order: self access, privileged
// roles, then a verified active caregiver grant. Anything else is denied.
func (g *Gate) Authorize(ctx context.Context, requester *user.User, targetUserID string) (bool, error) {
	if requester == nil || targetUserID == "" {
		return false, nil
	}
	if requester.ID == targetUserID {
		return true, nil
	}
	switch requester.Role {
	case user.RoleAdmin, user.RoleHealthcareProvider:
		return true, nil
	case user.RoleCaregiver:
		return g.repo.ActiveVerifiedExists(ctx, requester.ID, targetUserID)
	}
	return false, nil
}

// Require is Authorize with denial folded into the error.
func (g *Gate) Require(ctx context.Context, requester *user.User, targetUserID string) error {
	allowed, err := g.Authorize(ctx, requester, targetUserID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrAccessDenied
	}
	return nil
}
