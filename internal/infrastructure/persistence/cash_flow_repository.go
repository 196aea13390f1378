package persistence

import (
	"context"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCashFlowRepository implements the append-only ledger using GORM
type GormCashFlowRepository struct {
	db *gorm.DB
}

// NewGormCashFlowRepository creates a new GormCashFlowRepository
func NewGormCashFlowRepository(db *gorm.DB) *GormCashFlowRepository {
	return &GormCashFlowRepository{db: db}
}

// Append inserts entry and copies the generated ID back onto it
func (r *GormCashFlowRepository) Append(ctx context.Context, entry *finance.CashFlow) error {
	var model models.CashFlowModel
	model.FromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append cash flow: %w", err)
	}
	entry.ID = model.ID
	return nil
}

// List returns one page of ledger rows visible within scope plus the total count
func (r *GormCashFlowRepository) List(ctx context.Context, scope finance.Scope, filter finance.CashFlowFilter) ([]finance.CashFlow, int64, error) {
	page := filter.Filter.Normalize()

	var total int64
	if err := r.filtered(ctx, scope, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cash flows: %w", err)
	}

	var rows []models.CashFlowModel
	if err := r.filtered(ctx, scope, filter).
		Order(orderClause(page, CashFlowSortFields, "transaction_date")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list cash flows: %w", err)
	}

	entries := make([]finance.CashFlow, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

func (r *GormCashFlowRepository) filtered(ctx context.Context, scope finance.Scope, filter finance.CashFlowFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.CashFlowModel{}).
		Scopes(tenant.ForScope(scope.TenantID, scope.CreatedBy))

	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID > 0 {
		query = query.Where("reference_id = ?", filter.ReferenceID)
	}
	return query
}

var (
	_ finance.CashFlowAppender   = (*GormCashFlowRepository)(nil)
	_ finance.CashFlowRepository = (*GormCashFlowRepository)(nil)
)
