// Package organization holds the estate hierarchy: divisions, gangs, harvesters,
// blocks and collection points. The hierarchy is maintained outside the reporting
// core and is read-only here.
package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Divisi is a division of the estate
type Divisi struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EstateName string    `json:"estate_name"`
}

// Gang is a harvesting crew inside a division
type Gang struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	DivisiID uuid.UUID `json:"divisi_id"`
}

// Blok is a planted block inside a division
type Blok struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	DivisiID uuid.UUID       `json:"divisi_id"`
	LuasHa   decimal.Decimal `json:"luas_ha"`
}

// Pemanen is a harvester belonging to a gang
type Pemanen struct {
	ID           uuid.UUID `json:"id"`
	OperatorCode string    `json:"operator_code"`
	Name         string    `json:"name"`
	GangID       uuid.UUID `json:"gang_id"`
	StatusAktif  bool      `json:"status_aktif"`
}

// TPH is a fruit collection point inside a block
type TPH struct {
	ID       uuid.UUID `json:"id"`
	NomorTPH string    `json:"nomor_tph"`
	BlokID   uuid.UUID `json:"blok_id"`
}

// Repository reads the hierarchy
type Repository interface {
	ListDivisi(ctx context.Context) ([]Divisi, error)
	FindDivisi(ctx context.Context, id uuid.UUID) (*Divisi, error)
	ListGangs(ctx context.Context, divisiID uuid.UUID) ([]Gang, error)
	ListBloks(ctx context.Context, divisiID uuid.UUID) ([]Blok, error)
	ListTPH(ctx context.Context, blokID uuid.UUID) ([]TPH, error)
	ListPemanen(ctx context.Context, gangID uuid.UUID, activeOnly bool) ([]Pemanen, error)
	// TotalArea sums luas_ha over the blocks in scope; nil divisiID means the whole estate.
	TotalArea(ctx context.Context, divisiID *uuid.UUID) (decimal.Decimal, error)
}
