package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements organization.Repository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// ListDivisi lists all divisions by name
func (r *GormOrganizationRepository) ListDivisi(ctx context.Context) ([]organization.Divisi, error) {
	var rows []models.DivisiModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list divisi")
	}
	out := make([]organization.Divisi, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindDivisi finds a division by its ID
func (r *GormOrganizationRepository) FindDivisi(ctx context.Context, id uuid.UUID) (*organization.Divisi, error) {
	var row models.DivisiModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("divisi", id.String())
		}
		return nil, translateError(err, "find divisi")
	}
	d := row.ToDomain()
	return &d, nil
}

// ListGangs lists the gangs of a division
func (r *GormOrganizationRepository) ListGangs(ctx context.Context, divisiID uuid.UUID) ([]organization.Gang, error) {
	var rows []models.GangModel
	if err := r.db.WithContext(ctx).Where("divisi_id = ?", divisiID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list gangs")
	}
	out := make([]organization.Gang, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ListBloks lists the blocks of a division
func (r *GormOrganizationRepository) ListBloks(ctx context.Context, divisiID uuid.UUID) ([]organization.Blok, error) {
	var rows []models.BlokModel
	if err := r.db.WithContext(ctx).Where("divisi_id = ?", divisiID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list bloks")
	}
	out := make([]organization.Blok, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ListTPH lists the collection points of a block
func (r *GormOrganizationRepository) ListTPH(ctx context.Context, blokID uuid.UUID) ([]organization.TPH, error) {
	var rows []models.TPHModel
	if err := r.db.WithContext(ctx).Where("blok_id = ?", blokID).Order("nomor_tph ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list tph")
	}
	out := make([]organization.TPH, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ListPemanen lists the harvesters of a gang
func (r *GormOrganizationRepository) ListPemanen(ctx context.Context, gangID uuid.UUID, activeOnly bool) ([]organization.Pemanen, error) {
	query := r.db.WithContext(ctx).Where("gang_id = ?", gangID)
	if activeOnly {
		query = query.Where("status_aktif = ?", true)
	}
	var rows []models.PemanenModel
	if err := query.Order("operator_code ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list pemanen")
	}
	out := make([]organization.Pemanen, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// TotalArea sums block areas in scope
func (r *GormOrganizationRepository) TotalArea(ctx context.Context, divisiID *uuid.UUID) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.BlokModel{})
	if divisiID != nil {
		query = query.Where("divisi_id = ?", *divisiID)
	}
	var agg struct {
		Total decimal.NullDecimal
	}
	if err := query.Select("SUM(luas_ha) AS total").Scan(&agg).Error; err != nil {
		return decimal.Zero, translateError(err, "sum block area")
	}
	if !agg.Total.Valid {
		return decimal.Zero, nil
	}
	return agg.Total.Decimal, nil
}
