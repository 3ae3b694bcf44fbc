package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/pentol/backend/internal/application/identity"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
)

// ProfileReader returns the caller's own profile
type ProfileReader interface {
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.MeResponse, error)
}

// OrganizationLookup lists the estate hierarchy for dropdowns
type OrganizationLookup interface {
	ListDivisi(ctx context.Context, actor *identity.Profile) ([]organization.Divisi, error)
	ListGangs(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Gang, error)
	ListBloks(ctx context.Context, actor *identity.Profile, divisiID uuid.UUID) ([]organization.Blok, error)
	ListTPH(ctx context.Context, blokID uuid.UUID) ([]organization.TPH, error)
	ListPemanen(ctx context.Context, gangID uuid.UUID) ([]organization.Pemanen, error)
}

// IdentityHandler serves the profile and organization lookups
type IdentityHandler struct {
	BaseHandler
	profiles ProfileReader
	lookups  OrganizationLookup
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(profiles ProfileReader, lookups OrganizationLookup) *IdentityHandler {
	return &IdentityHandler{
		profiles: profiles,
		lookups:  lookups,
	}
}

// Me handles GET /api/v1/me
func (h *IdentityHandler) Me(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	me, err := h.profiles.Me(c.Request.Context(), actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, me)
}

// ListDivisi handles GET /api/v1/org/divisi
func (h *IdentityHandler) ListDivisi(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	items, err := h.lookups.ListDivisi(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListGangs handles GET /api/v1/org/divisi/:id/gangs
func (h *IdentityHandler) ListGangs(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	divisiID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.lookups.ListGangs(c.Request.Context(), actor, divisiID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListBloks handles GET /api/v1/org/divisi/:id/bloks
func (h *IdentityHandler) ListBloks(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	divisiID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.lookups.ListBloks(c.Request.Context(), actor, divisiID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListTPH handles GET /api/v1/org/bloks/:id/tph
func (h *IdentityHandler) ListTPH(c *gin.Context) {
	blokID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.lookups.ListTPH(c.Request.Context(), blokID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListPemanen handles GET /api/v1/org/gangs/:id/pemanen
func (h *IdentityHandler) ListPemanen(c *gin.Context) {
	gangID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.lookups.ListPemanen(c.Request.Context(), gangID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
