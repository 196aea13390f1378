package models

import (
	"strings"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OwnedModel adds the tenant and actor columns shared by ledger tables.
// TenantID is NULL for rows written by tenant-less administrators.
type OwnedModel struct {
	BaseModel
	TenantID  *string `gorm:"type:varchar(64);index"`
	CreatedBy string  `gorm:"type:varchar(128);not null;index"`
}

// nullString maps an empty or blank string to NULL
func nullString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// derefString maps NULL back to the empty string
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
