package finance

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashFlowType classifies a ledger entry
type CashFlowType string

const (
	CashFlowTypeExpense    CashFlowType = "expense"
	CashFlowTypeIncome     CashFlowType = "income"
	CashFlowTypeAdjustment CashFlowType = "adjustment"
)

// IsValid checks if the type is a valid CashFlowType
func (t CashFlowType) IsValid() bool {
	switch t {
	case CashFlowTypeExpense, CashFlowTypeIncome, CashFlowTypeAdjustment:
		return true
	}
	return false
}

// ReferenceTypeExpense tags ledger rows originating from an expense
const ReferenceTypeExpense = "expense"

// UnknownCategory is the snapshot written when the category cannot be resolved
const UnknownCategory = "Unknown"

// CashFlow is an append-only ledger entry.
// Category is copied at write time so later renames do not alter history.
type CashFlow struct {
	shared.BaseEntity
	TenantID        string
	Type            CashFlowType
	Category        string
	Description     string
	Amount          decimal.Decimal
	TransactionDate time.Time
	ReferenceID     int64
	ReferenceType   string
	CreatedBy       string
}

// NewExpenseCashFlow builds the ledger entry for a persisted expense
func NewExpenseCashFlow(expense *Expense, categorySnapshot string) *CashFlow {
	if categorySnapshot == "" {
		categorySnapshot = UnknownCategory
	}
	return &CashFlow{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        expense.TenantID,
		Type:            CashFlowTypeExpense,
		Category:        categorySnapshot,
		Description:     expense.Description,
		Amount:          expense.Amount,
		TransactionDate: expense.ExpenseDate,
		ReferenceID:     expense.ID,
		ReferenceType:   ReferenceTypeExpense,
		CreatedBy:       expense.CreatedBy,
	}
}
