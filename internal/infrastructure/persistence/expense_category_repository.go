package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseCategoryRepository implements category persistence using GORM
type GormExpenseCategoryRepository struct {
	db *gorm.DB
}

// NewGormExpenseCategoryRepository creates a new GormExpenseCategoryRepository
func NewGormExpenseCategoryRepository(db *gorm.DB) *GormExpenseCategoryRepository {
	return &GormExpenseCategoryRepository{db: db}
}

// FindNameByID returns the category name, or finance.ErrCategoryNotFound.
// Inactive categories still resolve.
func (r *GormExpenseCategoryRepository) FindNameByID(ctx context.Context, id int64) (string, error) {
	var model models.ExpenseCategoryModel
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", finance.ErrCategoryNotFound
		}
		return "", fmt.Errorf("failed to find category name: %w", err)
	}
	return model.Name, nil
}

// FindByID finds a category by its ID
func (r *GormExpenseCategoryRepository) FindByID(ctx context.Context, id int64) (*finance.ExpenseCategory, error) {
	var model models.ExpenseCategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll lists categories by name
func (r *GormExpenseCategoryRepository) FindAll(ctx context.Context, activeOnly bool) ([]finance.ExpenseCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseCategoryModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.ExpenseCategoryModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]finance.ExpenseCategory, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Create inserts a category. A duplicate name yields finance.ErrCategoryNameTaken.
func (r *GormExpenseCategoryRepository) Create(ctx context.Context, category *finance.ExpenseCategory) error {
	var model models.ExpenseCategoryModel
	model.FromDomain(category)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return finance.ErrCategoryNameTaken.WithCause(err)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = model.ID
	return nil
}

var (
	_ finance.CategoryReader            = (*GormExpenseCategoryRepository)(nil)
	_ finance.ExpenseCategoryRepository = (*GormExpenseCategoryRepository)(nil)
)
