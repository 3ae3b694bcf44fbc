package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/domain/report"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormHarvestRepository implements harvest.Repository using GORM
type GormHarvestRepository struct {
	db *gorm.DB
}

// NewGormHarvestRepository creates a new GormHarvestRepository
func NewGormHarvestRepository(db *gorm.DB) *GormHarvestRepository {
	return &GormHarvestRepository{db: db}
}

// CreateBatch inserts every record in one transaction
func (r *GormHarvestRepository) CreateBatch(ctx context.Context, records []*harvest.Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.HarvestRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.HarvestRecordModelFromDomain(rec)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
	return translateError(err, "create harvest records")
}

// FindByID finds a harvest record by its ID
func (r *GormHarvestRepository) FindByID(ctx context.Context, id uuid.UUID) (*harvest.Record, error) {
	var model models.HarvestRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("harvest_record", id.String())
		}
		return nil, translateError(err, "find harvest record")
	}
	return model.ToDomain(), nil
}

// UpdateStatus writes the review fields only while the stored status is still from
func (r *GormHarvestRepository) UpdateStatus(ctx context.Context, rec *harvest.Record, from harvest.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HarvestRecordModel{}).
		Where("id = ? AND status = ?", rec.ID, from.String()).
		Updates(map[string]any{
			"status":            rec.Status.String(),
			"approved_by":       rec.ApprovedBy,
			"approved_at":       rec.ApprovedAt,
			"keterangan_review": rec.KeteranganReview,
			"updated_at":        rec.UpdatedAt,
		})
	if result.Error != nil {
		return false, translateError(result.Error, "update harvest status")
	}
	return result.RowsAffected == 1, nil
}

// List returns a page of records ordered oldest first, the order reviewers work in
func (r *GormHarvestRepository) List(ctx context.Context, filter harvest.QueueFilter, page shared.Pagination) ([]harvest.Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HarvestRecordModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.DivisiID != nil {
		query = query.Where("divisi_id = ?", *filter.DivisiID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count harvest records")
	}

	var rows []models.HarvestRecordModel
	if err := query.Order("tanggal ASC").Order("created_at ASC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list harvest records")
	}

	records := make([]harvest.Record, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, total, nil
}

type restanRecord struct {
	ID            uuid.UUID
	Tanggal       time.Time
	BlokName      string
	PemanenName   string
	NomorPanen    string
	JumlahJJG     int
	HasilPanenBJD decimal.Decimal
}

// ListRestan lists approved records that are not on any delivery note yet
func (r *GormHarvestRepository) ListRestan(ctx context.Context, divisiID *uuid.UUID) ([]harvest.RestanItem, error) {
	query := r.db.WithContext(ctx).
		Table("harvest_records hr").
		Select(`hr.id, hr.tanggal, COALESCE(b.name, '') AS blok_name, COALESCE(p.name, '') AS pemanen_name,
			hr.nomor_panen, hr.jumlah_jjg, hr.hasil_panen_bjd`).
		Joins("LEFT JOIN blok b ON b.id = hr.blok_id").
		Joins("LEFT JOIN pemanen p ON p.id = hr.pemanen_id").
		Where("hr.status = ? AND hr.spb_id IS NULL", harvest.StatusApproved.String())
	if divisiID != nil {
		query = query.Where("hr.divisi_id = ?", *divisiID)
	}

	var rows []restanRecord
	if err := query.Order("hr.tanggal ASC").Order("hr.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, translateError(err, "list restan")
	}

	items := make([]harvest.RestanItem, len(rows))
	for i, row := range rows {
		items[i] = harvest.RestanItem{
			ID:            row.ID,
			Tanggal:       models.DateParam(models.CalendarDate(row.Tanggal)),
			BlokName:      orMissing(row.BlokName),
			PemanenName:   orMissing(row.PemanenName),
			NomorPanen:    row.NomorPanen,
			JumlahJJG:     row.JumlahJJG,
			HasilPanenBJD: row.HasilPanenBJD,
		}
	}
	return items, nil
}

func orMissing(name string) string {
	if strings.TrimSpace(name) == "" {
		return report.MissingName
	}
	return name
}
