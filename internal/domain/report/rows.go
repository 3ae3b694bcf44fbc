package report

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// MissingName is shown when a joined name is absent
	MissingName = "-"
	// UnknownCreator is shown when the creating clerk cannot be resolved
	UnknownCreator = "Unknown"
)

// Filter selects harvest records for reports. EndDate is inclusive.
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	DivisiID  *uuid.UUID
	GangID    *uuid.UUID
}

// IsEmptyRange reports whether the filter cannot match any day
func (f Filter) IsEmptyRange() bool {
	return truncateDay(f.StartDate).After(truncateDay(f.EndDate))
}

// DenormalizedRow is a harvest record joined with its display names.
// Name fields are never empty; missing joins are filled by Normalize.
type DenormalizedRow struct {
	ID             uuid.UUID       `json:"id"`
	Tanggal        time.Time       `json:"tanggal"`
	CreatedAt      time.Time       `json:"created_at"`
	Status         string          `json:"status"`
	KraniName      string          `json:"krani_name"`
	DivisiName     string          `json:"divisi_name"`
	GangName       string          `json:"gang_name"`
	BlokName       string          `json:"blok_name"`
	OperatorCode   string          `json:"operator_code"`
	PemanenName    string          `json:"pemanen_name"`
	NomorTPH       string          `json:"nomor_tph"`
	Rotasi         int             `json:"rotasi"`
	NomorPanen     string          `json:"nomor_panen"`
	JumlahJJG      int             `json:"jumlah_jjg"`
	BJR            decimal.Decimal `json:"bjr"`
	HasilPanenBJD  decimal.Decimal `json:"hasil_panen_bjd"`
	Brondolan      decimal.Decimal `json:"brondolan"`
	BuahMasak      int             `json:"buah_masak"`
	BuahMentah     int             `json:"buah_mentah"`
	BuahMengkal    int             `json:"buah_mengkal"`
	Overripe       int             `json:"overripe"`
	Abnormal       int             `json:"abnormal"`
	BuahBusuk      int             `json:"buah_busuk"`
	TangkaiPanjang int             `json:"tangkai_panjang"`
	Jangkos        int             `json:"jangkos"`
	Keterangan     string          `json:"keterangan"`
}

// Normalize replaces absent display names with their placeholders
func (r *DenormalizedRow) Normalize() {
	r.KraniName = orDefault(r.KraniName, UnknownCreator)
	r.DivisiName = orDefault(r.DivisiName, MissingName)
	r.GangName = orDefault(r.GangName, MissingName)
	r.BlokName = orDefault(r.BlokName, MissingName)
	r.OperatorCode = orDefault(r.OperatorCode, MissingName)
	r.PemanenName = orDefault(r.PemanenName, MissingName)
	r.NomorTPH = orDefault(r.NomorTPH, MissingName)
	r.NomorPanen = orDefault(r.NomorPanen, MissingName)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// JoinDisplay flattens a multi-valued join into one display string.
// Blank values are skipped; an empty result is shown as MissingName.
func JoinDisplay(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return MissingName
	}
	return strings.Join(parts, ", ")
}

// HarvesterSums are one harvester's totals for a day
type HarvesterSums struct {
	PemanenID    uuid.UUID
	PemanenName  string
	OperatorCode string
	GangName     string
	Records      int64
	TotalJJG     int64
	TotalKg      decimal.Decimal
	TotalMentah  int64
}

// HarvesterPerformance is a gang performance row
type HarvesterPerformance struct {
	PemanenID    uuid.UUID       `json:"pemanen_id"`
	PemanenName  string          `json:"pemanen_name"`
	OperatorCode string          `json:"operator_code"`
	GangName     string          `json:"gang_name"`
	Records      int64           `json:"records"`
	TotalJJG     int64           `json:"total_jjg"`
	TotalKg      decimal.Decimal `json:"total_kg"`
	TotalMentah  int64           `json:"total_mentah"`
	LossesRate   decimal.Decimal `json:"losses_rate"`
}

// NewHarvesterPerformance derives the losses rate for a harvester
func NewHarvesterPerformance(s HarvesterSums) HarvesterPerformance {
	return HarvesterPerformance{
		PemanenID:    s.PemanenID,
		PemanenName:  orDefault(s.PemanenName, MissingName),
		OperatorCode: orDefault(s.OperatorCode, MissingName),
		GangName:     orDefault(s.GangName, MissingName),
		Records:      s.Records,
		TotalJJG:     s.TotalJJG,
		TotalKg:      s.TotalKg,
		TotalMentah:  s.TotalMentah,
		LossesRate:   safeDiv(decimal.NewFromInt(s.TotalMentah).Mul(hundred), decimal.NewFromInt(s.TotalJJG)),
	}
}

// Repository runs the report queries
type Repository interface {
	// SumKPI sums non-rejected records in [start, end]; area and target are left zero.
	SumKPI(ctx context.Context, divisiID *uuid.UUID, start, end time.Time) (KPIInputs, error)
	FetchRecords(ctx context.Context, filter Filter, page shared.Pagination) ([]DenormalizedRow, int64, error)
	// StreamRecords calls fn with consecutive batches in report order until the
	// result set is exhausted or fn returns an error.
	StreamRecords(ctx context.Context, filter Filter, batchSize int, fn func([]DenormalizedRow) error) error
	GangPerformance(ctx context.Context, divisiID *uuid.UUID, day time.Time) ([]HarvesterSums, error)
}
