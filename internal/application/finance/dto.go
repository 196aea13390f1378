package finance

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/finance"
)

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            int64     `json:"id"`
	TenantID      string    `json:"tenant_id,omitempty"`
	CategoryID    int64     `json:"category_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	ExpenseDate   time.Time `json:"expense_date"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	ReceiptURL    string    `json:"receipt_url,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CashFlowResponse represents a ledger entry in API responses
type CashFlowResponse struct {
	ID              int64     `json:"id"`
	TenantID        string    `json:"tenant_id,omitempty"`
	Type            string    `json:"type"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	Amount          string    `json:"amount"`
	TransactionDate time.Time `json:"transaction_date"`
	ReferenceID     int64     `json:"reference_id"`
	ReferenceType   string    `json:"reference_type"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExpenseCategoryResponse represents a category in API responses
type ExpenseCategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordExpenseResponse is returned after a committed expense write
type RecordExpenseResponse struct {
	Expense                  ExpenseResponse  `json:"expense"`
	CashFlow                 CashFlowResponse `json:"cash_flow"`
	CategorySnapshotDegraded bool             `json:"category_snapshot_degraded"`
}

// ToExpenseResponse converts a domain expense
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		TenantID:      e.TenantID,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		Amount:        e.Amount.StringFixed(finance.AmountScale),
		ExpenseDate:   e.ExpenseDate,
		PaymentMethod: e.PaymentMethod,
		ReceiptURL:    e.ReceiptURL,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToCashFlowResponse converts a domain ledger entry
func ToCashFlowResponse(c *finance.CashFlow) CashFlowResponse {
	return CashFlowResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		Type:            string(c.Type),
		Category:        c.Category,
		Description:     c.Description,
		Amount:          c.Amount.StringFixed(finance.AmountScale),
		TransactionDate: c.TransactionDate,
		ReferenceID:     c.ReferenceID,
		ReferenceType:   c.ReferenceType,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
	}
}

// ToExpenseCategoryResponse converts a domain category
func ToExpenseCategoryResponse(c *finance.ExpenseCategory) ExpenseCategoryResponse {
	return ExpenseCategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToRecordExpenseResponse converts a ledger write result
func ToRecordExpenseResponse(r *RecordExpenseResult) RecordExpenseResponse {
	return RecordExpenseResponse{
		Expense:                  ToExpenseResponse(r.Expense),
		CashFlow:                 ToCashFlowResponse(r.CashFlow),
		CategorySnapshotDegraded: r.CategorySnapshotDegraded,
	}
}
