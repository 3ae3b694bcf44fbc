package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
)

// Profile is the authenticated user as seen by the reporting core.
// Profiles are provisioned by the identity provider and are read-only here.
type Profile struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     Role
	DivisiID *uuid.UUID
	GangID   *uuid.UUID
}

// Authorize returns a permission error when the profile's role may not perform action
func (p *Profile) Authorize(action Action) error {
	if p == nil {
		return shared.NewPermissionError("no authenticated profile")
	}
	if !p.Role.Can(action) {
		return shared.NewPermissionError(
			fmt.Sprintf("role %s is not allowed to %s", p.Role, action),
		).WithDetail("role", p.Role.String()).WithDetail("action", string(action))
	}
	return nil
}

// ResolveDivision returns the division the profile may query given the requested one.
//
// Estate-wide roles and profiles without a division get the requested division
// unchanged (nil meaning the whole estate). Everyone else is pinned to their own
// division; asking for a different one is a permission error.
func (p *Profile) ResolveDivision(requested *uuid.UUID) (*uuid.UUID, error) {
	if p == nil {
		return nil, shared.NewPermissionError("no authenticated profile")
	}
	if p.Role.IsEstateWide() || p.DivisiID == nil {
		return requested, nil
	}
	if requested != nil && *requested != *p.DivisiID {
		return nil, shared.NewPermissionError("profile is restricted to its own division").
			WithDetail("divisi_id", p.DivisiID.String())
	}
	own := *p.DivisiID
	return &own, nil
}

// ProfileRepository loads profiles by user id
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
}
