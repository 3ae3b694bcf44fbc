package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
)

// BaseModel holds the identity and audit columns of mutable rows
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity(m)
}

func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	*m = BaseModel(e)
}
