package finance

import (
	"strings"
	"unicode/utf8"

	"github.com/shopdesk/backend/internal/domain/shared"
)

const MaxCategoryNameLength = 100

// ExpenseCategory is a reference entity naming a class of expenses
type ExpenseCategory struct {
	shared.BaseEntity
	Name        string
	Description string
	IsActive    bool
}

// NewExpenseCategory creates an active category
func NewExpenseCategory(name, description string) (*ExpenseCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return nil, ErrInvalidCategory
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, ErrFieldTooLong.WithMessage("Description cannot exceed 500 characters")
	}
	return &ExpenseCategory{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}, nil
}
