// Package organization serves the estate hierarchy dropdowns to the input screens.
package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"go.uber.org/zap"
)

// LookupService lists divisions, gangs, blocks, collection points and harvesters
type LookupService struct {
	repo   organization.Repository
	policy *policy.Policy
	logger *zap.Logger
}

// NewLookupService creates a new LookupService
func NewLookupService(repo organization.Repository, p *policy.Policy, logger *zap.Logger) *LookupService {
	if p == nil {
		p = policy.Default()
	}
	return &LookupService{repo: repo, policy: p, logger: logger}
}

// ListDivisi returns the divisions the actor can see
func (s *LookupService) ListDivisi(ctx context.Context, actor *identity.Profile) ([]organization.Divisi, error) {
	scope, err := actor.ResolveDivision(nil)
	if err != nil {
		return nil, err
	}

	var out []organization.Divisi
	err = s.policy.Read(ctx, "organization.divisi", func(ctx context.Context) error {
		if scope != nil {
			d, err := s.repo.FindDivisi(ctx, *scope)
			if err != nil {
				return err
			}
			out = []organization.Divisi{*d}
			return nil
		}
		var err error
		out, err = s.repo.ListDivisi(ctx)
		return err
	})
	return out, err
}

// ListGangs returns the gangs of a division
func (s *LookupService) ListGangs(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Gang, error) {
	if _, err := actor.ResolveDivision(&divisiID); err != nil {
		return nil, err
	}
	var out []organization.Gang
	err := s.policy.Read(ctx, "organization.gangs", func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListGangs(ctx, divisiID)
		return err
	})
	return out, err
}

// ListBloks returns the blocks of a division
func (s *LookupService) ListBloks(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Blok, error) {
	if _, err := actor.ResolveDivision(&divisiID); err != nil {
		return nil, err
	}
	var out []organization.Blok
	err := s.policy.Read(ctx, "organization.bloks", func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListBloks(ctx, divisiID)
		return err
	})
	return out, err
}

// ListTPH returns the collection points of a block
func (s *LookupService) ListTPH(ctx context.Context, blokID uuid.UUID) ([]organization.TPH, error) {
	var out []organization.TPH
	err := s.policy.Read(ctx, "organization.tph", func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListTPH(ctx, blokID)
		return err
	})
	return out, err
}

// ListPemanen returns the active harvesters of a gang
func (s *LookupService) ListPemanen(ctx context.Context, gangID uuid.UUID) ([]organization.Pemanen, error) {
	var out []organization.Pemanen
	err := s.policy.Read(ctx, "organization.pemanen", func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListPemanen(ctx, gangID, true)
		return err
	})
	return out, err
}
