// Package tenant provides row scoping for GORM queries over tables that
// carry tenant_id and created_by columns.
//
// Usage:
//
//	db.Scopes(tenant.ForScope(scope.TenantID, scope.CreatedBy)).Find(&rows)
package tenant

import (
	"gorm.io/gorm"
)

const (
	TenantColumn  = "tenant_id"
	CreatorColumn = "created_by"
)

// TenantScopeString applies tenant filtering using a string tenant ID
func TenantScopeString(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(TenantColumn+" = ?", tenantID)
	}
}

// CreatorScope restricts rows to those created by subjectID
func CreatorScope(subjectID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(CreatorColumn+" = ?", subjectID)
	}
}

// ForScope picks the narrowest applicable filter. A tenant ID wins over a
// creator; with neither the query is left unscoped.
func ForScope(tenantID, createdBy string) func(db *gorm.DB) *gorm.DB {
	switch {
	case tenantID != "":
		return TenantScopeString(tenantID)
	case createdBy != "":
		return CreatorScope(createdBy)
	default:
		return func(db *gorm.DB) *gorm.DB { return db }
	}
}
