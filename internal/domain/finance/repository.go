package finance

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// ExpenseWriter inserts expenses, assigning their ID
type ExpenseWriter interface {
	Create(ctx context.Context, expense *Expense) error
}

// CategoryReader resolves category names.
// FindNameByID returns ErrCategoryNotFound when no row matches.
type CategoryReader interface {
	FindNameByID(ctx context.Context, id int64) (string, error)
}

// CashFlowAppender appends ledger entries. There is no update or delete.
type CashFlowAppender interface {
	Append(ctx context.Context, entry *CashFlow) error
}

// LedgerRepositories are the repositories bound to one open transaction
type LedgerRepositories interface {
	Expenses() ExpenseWriter
	Categories() CategoryReader
	CashFlows() CashFlowAppender
}

// LedgerUnitOfWork runs fn inside a single transaction.
// The transaction commits when fn returns nil and rolls back on error or panic;
// a panic inside fn is returned as an error.
// The repositories passed to fn must not be retained after fn returns.
type LedgerUnitOfWork interface {
	Do(ctx context.Context, fn func(repos LedgerRepositories) error) error
}

// Scope restricts reads to rows a principal may see.
// An empty TenantID with an empty CreatedBy means unscoped.
type Scope struct {
	TenantID  string
	CreatedBy string
}

// IsUnscoped returns true when no restriction applies
func (s Scope) IsUnscoped() bool {
	return s.TenantID == "" && s.CreatedBy == ""
}

// ExpenseRepository is the read side of expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, scope Scope, id int64) (*Expense, error)
	List(ctx context.Context, scope Scope, filter shared.Filter) ([]Expense, int64, error)
}

// CashFlowFilter narrows ledger listings
type CashFlowFilter struct {
	shared.Filter
	Type          CashFlowType
	ReferenceType string
	ReferenceID   int64
}

// CashFlowRepository is the read side of the ledger
type CashFlowRepository interface {
	List(ctx context.Context, scope Scope, filter CashFlowFilter) ([]CashFlow, int64, error)
}

// ExpenseCategoryRepository manages the category reference table
type ExpenseCategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*ExpenseCategory, error)
	FindAll(ctx context.Context, activeOnly bool) ([]ExpenseCategory, error)
	Create(ctx context.Context, category *ExpenseCategory) error
}
