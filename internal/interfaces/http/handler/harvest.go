package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	harvestapp "github.com/pentol/backend/internal/application/harvest"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/interfaces/http/dto"
)

// PhotoFormField is the multipart field carrying a harvest photo
const PhotoFormField = "file"

// HarvestInput records harvest data
type HarvestInput interface {
	SubmitInput(ctx context.Context, actor *identity.Profile, req harvestapp.InputRequest) (*harvestapp.InputResult, error)
	UploadPhoto(ctx context.Context, actor *identity.Profile, r io.Reader) (*harvestapp.PhotoResult, error)
}

// HarvestApproval moves records through the approval workflow
type HarvestApproval interface {
	Submit(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.TransitionResult, error)
	Approve(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.TransitionResult, error)
	Reject(ctx context.Context, actor *identity.Profile, id uuid.UUID, reason string) (*harvestapp.TransitionResult, error)
	BulkTransition(ctx context.Context, actor *identity.Profile, ids []uuid.UUID, to harvest.Status, reason string) (*harvestapp.BulkResult, error)
	PendingQueue(ctx context.Context, actor *identity.Profile, divisiID *uuid.UUID, page shared.Pagination) (*shared.Paginated[harvestapp.RecordResponse], error)
	GetRecord(ctx context.Context, actor *identity.Profile, id uuid.UUID) (*harvestapp.RecordResponse, error)
}

// HarvestHandler serves harvest input and approval endpoints
type HarvestHandler struct {
	BaseHandler
	input    HarvestInput
	approval HarvestApproval
}

// NewHarvestHandler creates a new HarvestHandler
func NewHarvestHandler(input HarvestInput, approval HarvestApproval) *HarvestHandler {
	return &HarvestHandler{
		input:    input,
		approval: approval,
	}
}

// PendingQuery filters the approval queue
type PendingQuery struct {
	DivisiID string `form:"divisi_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SubmitInput handles POST /api/v1/harvest/inputs
func (h *HarvestHandler) SubmitInput(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req harvestapp.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.input.SubmitInput(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UploadPhoto handles POST /api/v1/harvest/photos (multipart, field "file")
func (h *HarvestHandler) UploadPhoto(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	header, err := c.FormFile(PhotoFormField)
	if err != nil {
		if isMaxBytes(err) {
			h.BindError(c, err)
			return
		}
		h.HandleError(c, shared.NewValidationError("photo file is required").WithDetail("field", PhotoFormField))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.input.UploadPhoto(c.Request.Context(), actor, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetRecord handles GET /api/v1/harvest/records/:id
func (h *HarvestHandler) GetRecord(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.approval.GetRecord(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Submit handles POST /api/v1/harvest/records/:id/submit
func (h *HarvestHandler) Submit(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.approval.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve handles POST /api/v1/harvest/records/:id/approve
func (h *HarvestHandler) Approve(c *gin.Context) {
	actor, id, _, ok := h.confirmedRecordAction(c)
	if !ok {
		return
	}

	result, err := h.approval.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reject handles POST /api/v1/harvest/records/:id/reject
func (h *HarvestHandler) Reject(c *gin.Context) {
	actor, id, reason, ok := h.confirmedRecordAction(c)
	if !ok {
		return
	}

	result, err := h.approval.Reject(c.Request.Context(), actor, id, reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// confirmedRecordAction reads the actor, the record id and a confirmed body,
// returning the body's reason
func (h *HarvestHandler) confirmedRecordAction(c *gin.Context) (*identity.Profile, uuid.UUID, string, bool) {
	actor, ok := h.getActor(c)
	if !ok {
		return nil, uuid.Nil, "", false
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return nil, uuid.Nil, "", false
	}
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return nil, uuid.Nil, "", false
	}
	if !h.requireConfirm(c, req.Confirm) {
		return nil, uuid.Nil, "", false
	}
	return actor, id, req.Reason, true
}

// BulkApprove handles POST /api/v1/harvest/records/bulk-approve
func (h *HarvestHandler) BulkApprove(c *gin.Context) {
	h.bulk(c, harvest.StatusApproved)
}

// BulkReject handles POST /api/v1/harvest/records/bulk-reject
func (h *HarvestHandler) BulkReject(c *gin.Context) {
	h.bulk(c, harvest.StatusRejected)
}

func (h *HarvestHandler) bulk(c *gin.Context, to harvest.Status) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req harvestapp.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.requireConfirm(c, req.Confirm) {
		return
	}

	reason := req.Reason
	if to == harvest.StatusApproved {
		reason = ""
	}
	result, err := h.approval.BulkTransition(c.Request.Context(), actor, req.IDs, to, reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PendingQueue handles GET /api/v1/harvest/approvals/pending
func (h *HarvestHandler) PendingQueue(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var q PendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	divisiID, err := optionalUUID("divisi_id", q.DivisiID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.approval.PendingQueue(c.Request.Context(), actor, divisiID, shared.Pagination{
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
