package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
)

// ProfileModel is the persistence model for the Profile domain entity.
type ProfileModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Email     string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName  string     `gorm:"type:varchar(200);not null"`
	Role      string     `gorm:"type:varchar(30);not null"`
	DivisiID  *uuid.UUID `gorm:"type:uuid;index"`
	GangID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		ID:       m.ID,
		Email:    m.Email,
		FullName: m.FullName,
		Role:     identity.Role(m.Role),
		DivisiID: m.DivisiID,
		GangID:   m.GangID,
	}
}

// FromDomain populates the persistence model from a domain Profile.
func (m *ProfileModel) FromDomain(p *identity.Profile) {
	m.ID = p.ID
	m.Email = p.Email
	m.FullName = p.FullName
	m.Role = p.Role.String()
	m.DivisiID = p.DivisiID
	m.GangID = p.GangID
}

// ProfileModelFromDomain creates a new persistence model from a domain Profile.
func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	m := &ProfileModel{}
	m.FromDomain(p)
	return m
}
