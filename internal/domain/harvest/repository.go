package harvest

import (
	"context"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RestanItem is an approved record still waiting for a delivery note
type RestanItem struct {
	ID            uuid.UUID       `json:"id"`
	Tanggal       string          `json:"tanggal"`
	BlokName      string          `json:"blok_name"`
	PemanenName   string          `json:"pemanen_name"`
	NomorPanen    string          `json:"nomor_panen"`
	JumlahJJG     int             `json:"jumlah_jjg"`
	HasilPanenBJD decimal.Decimal `json:"hasil_panen_bjd"`
}

// QueueFilter narrows the approval queue
type QueueFilter struct {
	Status   Status
	DivisiID *uuid.UUID
}

// Repository persists harvest records
type Repository interface {
	// CreateBatch inserts all records in one transaction or none of them.
	CreateBatch(ctx context.Context, records []*Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	// UpdateStatus writes the transition fields of r only if the stored status is
	// still from. It reports false when another writer got there first.
	UpdateStatus(ctx context.Context, r *Record, from Status) (bool, error)
	List(ctx context.Context, filter QueueFilter, page shared.Pagination) ([]Record, int64, error)
	ListRestan(ctx context.Context, divisiID *uuid.UUID) ([]RestanItem, error)
}
