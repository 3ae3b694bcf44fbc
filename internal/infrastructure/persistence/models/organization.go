package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/shopspring/decimal"
)

// DivisiModel is the persistence model for divisi
type DivisiModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Name       string    `gorm:"type:varchar(100);not null"`
	EstateName string    `gorm:"type:varchar(100);not null;default:''"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DivisiModel) TableName() string {
	return "divisi"
}

// ToDomain converts the persistence model to a domain Divisi
func (m *DivisiModel) ToDomain() organization.Divisi {
	return organization.Divisi{ID: m.ID, Name: m.Name, EstateName: m.EstateName}
}

// GangModel is the persistence model for gang
type GangModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	DivisiID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GangModel) TableName() string {
	return "gang"
}

// ToDomain converts the persistence model to a domain Gang
func (m *GangModel) ToDomain() organization.Gang {
	return organization.Gang{ID: m.ID, Name: m.Name, DivisiID: m.DivisiID}
}

// BlokModel is the persistence model for blok
type BlokModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name      string          `gorm:"type:varchar(100);not null"`
	DivisiID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LuasHa    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BlokModel) TableName() string {
	return "blok"
}

// ToDomain converts the persistence model to a domain Blok
func (m *BlokModel) ToDomain() organization.Blok {
	return organization.Blok{ID: m.ID, Name: m.Name, DivisiID: m.DivisiID, LuasHa: m.LuasHa}
}

// PemanenModel is the persistence model for pemanen
type PemanenModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	OperatorCode string    `gorm:"type:varchar(50);not null"`
	Name         string    `gorm:"type:varchar(150);not null"`
	GangID       uuid.UUID `gorm:"type:uuid;not null;index"`
	StatusAktif  bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PemanenModel) TableName() string {
	return "pemanen"
}

// ToDomain converts the persistence model to a domain Pemanen
func (m *PemanenModel) ToDomain() organization.Pemanen {
	return organization.Pemanen{
		ID:           m.ID,
		OperatorCode: m.OperatorCode,
		Name:         m.Name,
		GangID:       m.GangID,
		StatusAktif:  m.StatusAktif,
	}
}

// TPHModel is the persistence model for tph
type TPHModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	NomorTPH  string    `gorm:"column:nomor_tph;type:varchar(50);not null"`
	BlokID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TPHModel) TableName() string {
	return "tph"
}

// ToDomain converts the persistence model to a domain TPH
func (m *TPHModel) ToDomain() organization.TPH {
	return organization.TPH{ID: m.ID, NomorTPH: m.NomorTPH, BlokID: m.BlokID}
}
