package report

import (
	"time"

	"github.com/pentol/backend/internal/domain/report"
)

// KPIRequest selects a daily KPI
type KPIRequest struct {
	Scope string `form:"scope"`
	Date  string `form:"date"`
}

// GangPerformanceRequest selects a day's harvester ranking
type GangPerformanceRequest struct {
	DivisiID string `form:"divisi_id"`
	Date     string `form:"date"`
}

// RecordsRequest filters the report listing. EndDate is inclusive.
type RecordsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	DivisiID  string `form:"divisi_id"`
	GangID    string `form:"gang_id"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// SummaryRequest selects a reporting period ending on Date
type SummaryRequest struct {
	Period   string `form:"period"`
	Date     string `form:"date"`
	DivisiID string `form:"divisi_id"`
}

// SummaryResponse totals a period
type SummaryResponse struct {
	Period    string               `json:"period"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Days      int                  `json:"days"`
	KPI       report.AggregatedKPI `json:"kpi"`
}

// ExportRequest selects the rows and format of an export
type ExportRequest struct {
	Format   string `form:"format"`
	Period   string `form:"period"`
	Date     string `form:"date"`
	DivisiID string `form:"divisi_id"`
	GangID   string `form:"gang_id"`
}

// ExportResult is a rendered export. Location is set when the artifact was
// published to a sink instead of being returned inline.
type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	Size        int    `json:"size"`
	Location    string `json:"location,omitempty"`
	Data        []byte `json:"-"`
}

// DocumentMeta describes the document an export writer produces
type DocumentMeta struct {
	Title      string
	ScopeName  string
	Period     report.Period
	StartDate  time.Time
	EndDate    time.Time
	ExportedAt time.Time
}
