package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const denormalizedColumns = `hr.id, hr.tanggal, hr.created_at, hr.status,
	COALESCE(pr.full_name, '') AS krani_name,
	COALESCE(d.name, '') AS divisi_name,
	COALESCE(g.name, '') AS gang_name,
	COALESCE(b.name, '') AS blok_name,
	COALESCE(p.operator_code, '') AS operator_code,
	COALESCE(p.name, '') AS pemanen_name,
	COALESCE(t.nomor_tph, '') AS nomor_tph,
	hr.rotasi, hr.nomor_panen, hr.jumlah_jjg, hr.bjr, hr.hasil_panen_bjd, hr.brondolan,
	hr.buah_masak, hr.buah_mentah, hr.buah_mengkal, hr.overripe, hr.abnormal, hr.buah_busuk,
	hr.tangkai_panjang, hr.jangkos, hr.keterangan`

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// inDays restricts hr.tanggal to the inclusive calendar range [start, end]
func inDays(start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("hr.tanggal >= ? AND hr.tanggal < ?", models.DateParam(start), models.NextDateParam(end))
	}
}

// inDivision restricts to one division; nil means the whole estate
func inDivision(divisiID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if divisiID == nil {
			return db
		}
		return db.Where("hr.divisi_id = ?", *divisiID)
	}
}

func notRejected(db *gorm.DB) *gorm.DB {
	return db.Where("hr.status <> ?", harvest.StatusRejected.String())
}

type kpiSums struct {
	RecordCount   int64
	TotalJJG      int64
	TotalKg       decimal.Decimal
	TotalMentah   int64
	GradedBunches int64
}

// SumKPI sums the non-rejected records of a scope over a date range
func (r *GormReportRepository) SumKPI(ctx context.Context, divisiID *uuid.UUID, start, end time.Time) (report.KPIInputs, error) {
	var sums kpiSums
	err := r.db.WithContext(ctx).
		Table("harvest_records hr").
		Select(`COUNT(*) AS record_count,
			COALESCE(SUM(hr.jumlah_jjg), 0) AS total_jjg,
			COALESCE(SUM(hr.hasil_panen_bjd), 0) AS total_kg,
			COALESCE(SUM(hr.buah_mentah), 0) AS total_mentah,
			COALESCE(SUM(hr.buah_masak + hr.buah_mentah + hr.buah_mengkal + hr.overripe + hr.abnormal + hr.buah_busuk), 0) AS graded_bunches`).
		Scopes(notRejected, inDays(start, end), inDivision(divisiID)).
		Scan(&sums).Error
	if err != nil {
		return report.KPIInputs{}, translateError(err, "sum kpi")
	}
	return report.KPIInputs{
		RecordCount:   sums.RecordCount,
		TotalJJG:      sums.TotalJJG,
		TotalKg:       sums.TotalKg,
		TotalMentah:   sums.TotalMentah,
		GradedBunches: sums.GradedBunches,
	}, nil
}

func (r *GormReportRepository) recordsQuery(ctx context.Context, filter report.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("harvest_records hr").
		Joins("LEFT JOIN profiles pr ON pr.id = hr.created_by").
		Joins("LEFT JOIN divisi d ON d.id = hr.divisi_id").
		Joins("LEFT JOIN pemanen p ON p.id = hr.pemanen_id").
		Joins("LEFT JOIN gang g ON g.id = p.gang_id").
		Joins("LEFT JOIN blok b ON b.id = hr.blok_id").
		Joins("LEFT JOIN tph t ON t.id = hr.tph_id").
		Scopes(inDays(filter.StartDate, filter.EndDate), inDivision(filter.DivisiID))
	if filter.GangID != nil {
		query = query.Where("p.gang_id = ?", *filter.GangID)
	}
	return query
}

func orderForReport(db *gorm.DB) *gorm.DB {
	return db.Order("hr.tanggal DESC").Order("hr.created_at DESC").Order("hr.id ASC")
}

// FetchRecords returns one page of denormalized rows, newest first
func (r *GormReportRepository) FetchRecords(ctx context.Context, filter report.Filter, page shared.Pagination) ([]report.DenormalizedRow, int64, error) {
	if filter.IsEmptyRange() {
		return []report.DenormalizedRow{}, 0, nil
	}

	var total int64
	if err := r.recordsQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count report records")
	}

	var rows []report.DenormalizedRow
	if err := r.recordsQuery(ctx, filter).
		Select(denormalizedColumns).
		Scopes(orderForReport).
		Offset(page.Offset()).Limit(page.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, translateError(err, "fetch report records")
	}
	for i := range rows {
		rows[i].Tanggal = models.CalendarDate(rows[i].Tanggal)
		rows[i].Normalize()
	}
	if rows == nil {
		rows = []report.DenormalizedRow{}
	}
	return rows, total, nil
}

// StreamRecords walks the full result set in report order, handing fn batches of
// at most batchSize rows. Only one batch is held in memory at a time.
func (r *GormReportRepository) StreamRecords(ctx context.Context, filter report.Filter, batchSize int, fn func([]report.DenormalizedRow) error) error {
	if filter.IsEmptyRange() {
		return nil
	}
	if batchSize <= 0 {
		batchSize = shared.DefaultPageSize
	}

	query := r.recordsQuery(ctx, filter).Select(denormalizedColumns).Scopes(orderForReport)
	rows, err := query.Rows()
	if err != nil {
		return translateError(err, "stream report records")
	}
	defer rows.Close()

	batch := make([]report.DenormalizedRow, 0, batchSize)
	for rows.Next() {
		var row report.DenormalizedRow
		if err := query.ScanRows(rows, &row); err != nil {
			return translateError(err, "scan report record")
		}
		row.Tanggal = models.CalendarDate(row.Tanggal)
		row.Normalize()
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]report.DenormalizedRow, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return translateError(err, "stream report records")
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// GangPerformance returns per-harvester totals for a day, busiest first
func (r *GormReportRepository) GangPerformance(ctx context.Context, divisiID *uuid.UUID, day time.Time) ([]report.HarvesterSums, error) {
	var rows []report.HarvesterSums
	err := r.db.WithContext(ctx).
		Table("harvest_records hr").
		Select(`hr.pemanen_id,
			COALESCE(p.name, '') AS pemanen_name,
			COALESCE(p.operator_code, '') AS operator_code,
			COALESCE(g.name, '') AS gang_name,
			COUNT(*) AS records,
			COALESCE(SUM(hr.jumlah_jjg), 0) AS total_jjg,
			COALESCE(SUM(hr.hasil_panen_bjd), 0) AS total_kg,
			COALESCE(SUM(hr.buah_mentah), 0) AS total_mentah`).
		Joins("LEFT JOIN pemanen p ON p.id = hr.pemanen_id").
		Joins("LEFT JOIN gang g ON g.id = p.gang_id").
		Scopes(notRejected, inDays(day, day), inDivision(divisiID)).
		Group("hr.pemanen_id, p.name, p.operator_code, g.name").
		Order("total_jjg DESC").Order("pemanen_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "gang performance")
	}
	return rows, nil
}
