package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	reportapp "github.com/pentol/backend/internal/application/report"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
)

// KPIReader computes aggregated KPIs
type KPIReader interface {
	ComputeDailyKpis(ctx context.Context, actor *identity.Profile, req reportapp.KPIRequest) (*report.AggregatedKPI, error)
	GangPerformance(ctx context.Context, actor *identity.Profile, req reportapp.GangPerformanceRequest) ([]report.HarvesterPerformance, error)
}

// ReportReader serves report listings and period totals
type ReportReader interface {
	FetchRecords(ctx context.Context, actor *identity.Profile, req reportapp.RecordsRequest) (*shared.Paginated[report.DenormalizedRow], error)
	Summary(ctx context.Context, actor *identity.Profile, req reportapp.SummaryRequest) (*reportapp.SummaryResponse, error)
}

// ReportExporter renders report exports
type ReportExporter interface {
	Export(ctx context.Context, actor *identity.Profile, req reportapp.ExportRequest) (*reportapp.ExportResult, error)
}

// ReportHandler serves KPI, listing and export endpoints
type ReportHandler struct {
	BaseHandler
	kpi     KPIReader
	reports ReportReader
	exports ReportExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(kpi KPIReader, reports ReportReader, exports ReportExporter) *ReportHandler {
	return &ReportHandler{
		kpi:     kpi,
		reports: reports,
		exports: exports,
	}
}

// KPI handles GET /api/v1/reports/kpi
func (h *ReportHandler) KPI(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req reportapp.KPIRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	kpi, err := h.kpi.ComputeDailyKpis(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kpi)
}

// GangPerformance handles GET /api/v1/reports/gang-performance
func (h *ReportHandler) GangPerformance(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req reportapp.GangPerformanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rows, err := h.kpi.GangPerformance(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Records handles GET /api/v1/reports/records
func (h *ReportHandler) Records(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req reportapp.RecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.reports.FetchRecords(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Summary handles GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req reportapp.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.reports.Summary(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export handles GET /api/v1/reports/export. Inline artifacts are streamed
// as an attachment; published ones are returned as JSON with their location.
func (h *ReportHandler) Export(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req reportapp.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.exports.Export(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Data == nil {
		h.Success(c, result)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
