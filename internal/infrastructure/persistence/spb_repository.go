package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/harvest"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/domain/spb"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nextSequenceSQL draws the next per-day delivery note number atomically
const nextSequenceSQL = `INSERT INTO spb_sequences (day_key, last_value) VALUES (?, 1)
ON CONFLICT (day_key) DO UPDATE SET last_value = spb_sequences.last_value + 1
RETURNING last_value`

// GormSPBRepository implements spb.Repository using GORM
type GormSPBRepository struct {
	db *gorm.DB
}

// NewGormSPBRepository creates a new GormSPBRepository
func NewGormSPBRepository(db *gorm.DB) *GormSPBRepository {
	return &GormSPBRepository{db: db}
}

type lockedRecord struct {
	ID     uuid.UUID
	Status string
	SpbID  *uuid.UUID
}

// CreateWithRecords creates the note and attaches the records in one transaction.
// The note number is drawn from the calendar day of note.CreatedAt.
func (r *GormSPBRepository) CreateWithRecords(ctx context.Context, note *spb.SPB, recordIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []lockedRecord
		if err := tx.Model(&models.HarvestRecordModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status", "spb_id").
			Where("id IN ?", recordIDs).
			Find(&locked).Error; err != nil {
			return err
		}

		byID := make(map[uuid.UUID]lockedRecord, len(locked))
		for _, rec := range locked {
			byID[rec.ID] = rec
		}
		var offending []string
		for _, id := range recordIDs {
			rec, ok := byID[id]
			if !ok || rec.Status != harvest.StatusApproved.String() || rec.SpbID != nil {
				offending = append(offending, id.String())
			}
		}
		if len(offending) > 0 {
			return shared.NewInvalidStateError("harvest records must exist, be approved and not yet be on a delivery note", offending...)
		}

		var seq int64
		if err := tx.Raw(nextSequenceSQL, note.CreatedAt.Format("20060102")).Scan(&seq).Error; err != nil {
			return err
		}
		note.NomorSPB = spb.FormatNumber(note.CreatedAt, seq)

		model := &models.SPBModel{}
		model.FromDomain(note)
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		result := tx.Model(&models.HarvestRecordModel{}).
			Where("id IN ? AND status = ? AND spb_id IS NULL", recordIDs, harvest.StatusApproved.String()).
			Updates(map[string]any{"spb_id": note.ID, "updated_at": note.CreatedAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(recordIDs)) {
			return shared.NewInvalidStateError("harvest records changed while the delivery note was being created")
		}
		return nil
	})
	return translateError(err, "create delivery note")
}

// FindByID finds a delivery note by its ID
func (r *GormSPBRepository) FindByID(ctx context.Context, id uuid.UUID) (*spb.SPB, error) {
	var model models.SPBModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("spb", id.String())
		}
		return nil, translateError(err, "find delivery note")
	}
	return model.ToDomain(), nil
}

type lineRecord struct {
	RecordID      uuid.UUID
	Tanggal       time.Time
	BlokName      string
	PemanenName   string
	JumlahJJG     int
	HasilPanenBJD decimal.Decimal
}

// Lines lists the harvest records attached to a delivery note
func (r *GormSPBRepository) Lines(ctx context.Context, id uuid.UUID) ([]spb.Line, error) {
	var rows []lineRecord
	err := r.db.WithContext(ctx).
		Table("harvest_records hr").
		Select(`hr.id AS record_id, hr.tanggal, COALESCE(b.name, '') AS blok_name,
			COALESCE(p.name, '') AS pemanen_name, hr.jumlah_jjg, hr.hasil_panen_bjd`).
		Joins("LEFT JOIN blok b ON b.id = hr.blok_id").
		Joins("LEFT JOIN pemanen p ON p.id = hr.pemanen_id").
		Where("hr.spb_id = ?", id).
		Order("hr.tanggal ASC").Order("hr.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "list delivery note lines")
	}

	lines := make([]spb.Line, len(rows))
	for i, row := range rows {
		lines[i] = spb.Line{
			RecordID:      row.RecordID,
			Tanggal:       models.DateParam(models.CalendarDate(row.Tanggal)),
			BlokName:      orMissing(row.BlokName),
			PemanenName:   orMissing(row.PemanenName),
			JumlahJJG:     row.JumlahJJG,
			HasilPanenBJD: row.HasilPanenBJD,
		}
	}
	return lines, nil
}

// MarkShipped moves a created note to shipped; false means it was already shipped
func (r *GormSPBRepository) MarkShipped(ctx context.Context, note *spb.SPB) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SPBModel{}).
		Where("id = ? AND status = ?", note.ID, string(spb.StatusCreated)).
		Updates(map[string]any{
			"status":     string(note.Status),
			"shipped_at": note.ShippedAt,
			"updated_at": note.UpdatedAt,
		})
	if result.Error != nil {
		return false, translateError(result.Error, "ship delivery note")
	}
	return result.RowsAffected == 1, nil
}

// List returns a page of delivery notes, newest first unless a sort is given
func (r *GormSPBRepository) List(ctx context.Context, filter spb.ListFilter, page shared.Pagination) ([]spb.SPB, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SPBModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count delivery notes")
	}

	var rows []models.SPBModel
	if err := query.Clauses(spbSort.orderBy(filter.SortBy, filter.SortOrder)).
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list delivery notes")
	}

	notes := make([]spb.SPB, len(rows))
	for i := range rows {
		notes[i] = *rows[i].ToDomain()
	}
	return notes, total, nil
}
