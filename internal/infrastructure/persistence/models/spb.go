package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/spb"
)

// SPBModel is the persistence model for spb
type SPBModel struct {
	BaseModel
	NomorSPB   string    `gorm:"column:nomor_spb;type:varchar(30);not null;uniqueIndex"`
	DriverName string    `gorm:"type:varchar(150);not null"`
	TruckPlate string    `gorm:"type:varchar(20);not null"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'created';index"`
	ShippedAt  *time.Time
}

// TableName returns the table name for GORM
func (SPBModel) TableName() string {
	return "spb"
}

// ToDomain converts the persistence model to a domain SPB
func (m *SPBModel) ToDomain() *spb.SPB {
	return &spb.SPB{
		BaseEntity: m.BaseModel.ToDomain(),
		NomorSPB:   m.NomorSPB,
		DriverName: m.DriverName,
		TruckPlate: m.TruckPlate,
		CreatedBy:  m.CreatedBy,
		Status:     spb.Status(m.Status),
		ShippedAt:  m.ShippedAt,
	}
}

// FromDomain populates the persistence model from a domain SPB
func (m *SPBModel) FromDomain(s *spb.SPB) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.NomorSPB = s.NomorSPB
	m.DriverName = s.DriverName
	m.TruckPlate = s.TruckPlate
	m.CreatedBy = s.CreatedBy
	m.Status = string(s.Status)
	m.ShippedAt = s.ShippedAt
}

// SPBSequenceModel holds the last number drawn for a day
type SPBSequenceModel struct {
	DayKey    string `gorm:"type:varchar(8);primary_key"`
	LastValue int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SPBSequenceModel) TableName() string {
	return "spb_sequences"
}
