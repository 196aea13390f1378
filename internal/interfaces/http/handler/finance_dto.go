package handler

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ExpenseDateLayout is the wire format of expense_date
const ExpenseDateLayout = "2006-01-02"

// RecordExpenseRequest is the body of POST /finance/expenses.
// Amount accepts both a JSON string and a JSON number.
type RecordExpenseRequest struct {
	CategoryID    int64           `json:"category_id" binding:"required,gt=0"`
	Description   string          `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   string          `json:"expense_date" binding:"required,datetime=2006-01-02"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,max=50"`
	ReceiptURL    string          `json:"receipt_url" binding:"omitempty,max=500"`
	Notes         string          `json:"notes" binding:"omitempty,max=2000"`
}

// ToInput converts the request to the domain input. The date has already
// been validated by the binding tag.
func (r RecordExpenseRequest) ToInput() finance.ExpenseInput {
	date, _ := time.Parse(ExpenseDateLayout, r.ExpenseDate)
	return finance.ExpenseInput{
		CategoryID:    r.CategoryID,
		Description:   r.Description,
		Amount:        r.Amount,
		ExpenseDate:   date,
		PaymentMethod: r.PaymentMethod,
		ReceiptURL:    r.ReceiptURL,
		Notes:         r.Notes,
	}
}

// ListCashFlowsRequest carries ledger query parameters
type ListCashFlowsRequest struct {
	dto.ListRequest
	Type          string `form:"type" binding:"omitempty,oneof=expense income adjustment"`
	ReferenceType string `form:"reference_type" binding:"omitempty,max=50"`
	ReferenceID   int64  `form:"reference_id" binding:"omitempty,gt=0"`
}

// ToFilter converts the request into a ledger filter
func (r ListCashFlowsRequest) ToFilter() finance.CashFlowFilter {
	return finance.CashFlowFilter{
		Filter:        r.ListRequest.ToFilter(),
		Type:          finance.CashFlowType(r.Type),
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
	}
}

// ListCategoriesRequest carries category query parameters
type ListCategoriesRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// CreateCategoryRequest is the body of POST /finance/expense-categories
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}
