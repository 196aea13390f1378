package finance

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateExpenseCategoryInput carries a new category
type CreateExpenseCategoryInput struct {
	Name        string
	Description string
}

// CategoryService manages the expense category reference table
type CategoryService struct {
	categories finance.ExpenseCategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories finance.ExpenseCategoryRepository, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{
		categories: categories,
		logger:     log,
	}
}

// List returns categories ordered by name
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]ExpenseCategoryResponse, error) {
	items, err := s.categories.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ExpenseCategoryResponse, len(items))
	for i := range items {
		out[i] = ToExpenseCategoryResponse(&items[i])
	}
	return out, nil
}

// Create adds a category. Only admins may call it.
func (s *CategoryService) Create(ctx context.Context, p *identity.Principal, in CreateExpenseCategoryInput) (*ExpenseCategoryResponse, error) {
	if p == nil || !p.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	category, err := finance.NewExpenseCategory(in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Expense category created",
		zap.Int64("category_id", category.ID),
		zap.String("name", category.Name),
		zap.String("created_by", p.SubjectID()))

	resp := ToExpenseCategoryResponse(category)
	return &resp, nil
}
