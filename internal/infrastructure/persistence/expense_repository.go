package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense persistence using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts expense and copies the generated ID back onto it
func (r *GormExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	expense.ID = model.ID
	return nil
}

// FindByID finds an expense visible within scope
func (r *GormExpenseRepository) FindByID(ctx context.Context, scope finance.Scope, id int64) (*finance.Expense, error) {
	var model models.ExpenseModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForScope(scope.TenantID, scope.CreatedBy)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return model.ToDomain(), nil
}

// List returns one page of expenses visible within scope plus the total count
func (r *GormExpenseRepository) List(ctx context.Context, scope finance.Scope, filter shared.Filter) ([]finance.Expense, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.scoped(ctx, scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	var rows []models.ExpenseModel
	if err := r.scoped(ctx, scope).
		Order(orderClause(filter, ExpenseSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]finance.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, total, nil
}

func (r *GormExpenseRepository) scoped(ctx context.Context, scope finance.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Scopes(tenant.ForScope(scope.TenantID, scope.CreatedBy))
}

var (
	_ finance.ExpenseWriter     = (*GormExpenseRepository)(nil)
	_ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
)
