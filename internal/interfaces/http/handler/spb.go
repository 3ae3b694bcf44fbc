package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	spbapp "github.com/pentol/backend/internal/application/spb"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/interfaces/http/dto"
)

// DeliveryNotes creates, lists and ships SPBs
type DeliveryNotes interface {
	CreateSpb(ctx context.Context, actor *identity.Profile, req spbapp.CreateRequest) (*spbapp.SpbResponse, error)
	Ship(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*spbapp.SpbResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*spbapp.SpbDetail, error)
	List(ctx context.Context, req spbapp.ListRequest) (*shared.Paginated[spbapp.SpbResponse], error)
	ListRestan(ctx context.Context, actor *identity.Profile, divisiID *uuid.UUID) ([]harvest.RestanItem, error)
}

// SpbHandler serves delivery note endpoints
type SpbHandler struct {
	BaseHandler
	notes DeliveryNotes
}

// NewSpbHandler creates a new SpbHandler
func NewSpbHandler(notes DeliveryNotes) *SpbHandler {
	return &SpbHandler{notes: notes}
}

// Create handles POST /api/v1/spb
func (h *SpbHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req spbapp.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.requireConfirm(c, req.Confirm) {
		return
	}

	note, err := h.notes.CreateSpb(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, note)
}

// List handles GET /api/v1/spb
func (h *SpbHandler) List(c *gin.Context) {
	var req spbapp.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.notes.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get handles GET /api/v1/spb/:id
func (h *SpbHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Ship handles POST /api/v1/spb/:id/ship
func (h *SpbHandler) Ship(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.requireConfirm(c, req.Confirm) {
		return
	}

	note, err := h.notes.Ship(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// ListRestan handles GET /api/v1/harvest/restan
func (h *SpbHandler) ListRestan(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	divisiID, err := optionalUUID("divisi_id", c.Query("divisi_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, err := h.notes.ListRestan(c.Request.Context(), actor, divisiID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
