package models

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ExpenseCategoryModel is the persistence model for ExpenseCategory
type ExpenseCategoryModel struct {
	BaseModel
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description *string `gorm:"type:varchar(500)"`
	IsActive    bool    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ExpenseCategoryModel) TableName() string {
	return "expense_categories"
}

// ToDomain converts the persistence model to a domain ExpenseCategory
func (m *ExpenseCategoryModel) ToDomain() *finance.ExpenseCategory {
	return &finance.ExpenseCategory{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: derefString(m.Description),
		IsActive:    m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ExpenseCategory
func (m *ExpenseCategoryModel) FromDomain(c *finance.ExpenseCategory) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Description = nullString(c.Description)
	m.IsActive = c.IsActive
}

// ExpenseModel is the persistence model for Expense
type ExpenseModel struct {
	OwnedModel
	CategoryID    int64           `gorm:"not null;index"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ExpenseDate   time.Time       `gorm:"type:date;not null;index"`
	PaymentMethod *string         `gorm:"type:varchar(50)"`
	ReceiptURL    *string         `gorm:"type:varchar(500)"`
	Notes         *string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      derefString(m.TenantID),
		CategoryID:    m.CategoryID,
		Description:   m.Description,
		Amount:        m.Amount,
		ExpenseDate:   m.ExpenseDate,
		PaymentMethod: derefString(m.PaymentMethod),
		ReceiptURL:    derefString(m.ReceiptURL),
		Notes:         derefString(m.Notes),
		CreatedBy:     m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = nullString(e.TenantID)
	m.CreatedBy = e.CreatedBy
	m.CategoryID = e.CategoryID
	m.Description = e.Description
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.PaymentMethod = nullString(e.PaymentMethod)
	m.ReceiptURL = nullString(e.ReceiptURL)
	m.Notes = nullString(e.Notes)
}

// CashFlowModel is the persistence model for CashFlow.
// Rows are inserted only; no code path updates or deletes them.
type CashFlowModel struct {
	OwnedModel
	Type            string          `gorm:"type:varchar(20);not null;index"`
	Category        string          `gorm:"type:varchar(100);not null"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TransactionDate time.Time       `gorm:"type:date;not null;index"`
	ReferenceID     int64           `gorm:"not null;index:idx_cash_flows_reference,priority:2"`
	ReferenceType   string          `gorm:"type:varchar(50);not null;index:idx_cash_flows_reference,priority:1"`
}

// TableName returns the table name for GORM
func (CashFlowModel) TableName() string {
	return "cash_flows"
}

// ToDomain converts the persistence model to a domain CashFlow
func (m *CashFlowModel) ToDomain() *finance.CashFlow {
	return &finance.CashFlow{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        derefString(m.TenantID),
		Type:            finance.CashFlowType(m.Type),
		Category:        m.Category,
		Description:     m.Description,
		Amount:          m.Amount,
		TransactionDate: m.TransactionDate,
		ReferenceID:     m.ReferenceID,
		ReferenceType:   m.ReferenceType,
		CreatedBy:       m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain CashFlow
func (m *CashFlowModel) FromDomain(c *finance.CashFlow) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = nullString(c.TenantID)
	m.CreatedBy = c.CreatedBy
	m.Type = string(c.Type)
	m.Category = c.Category
	m.Description = c.Description
	m.Amount = c.Amount
	m.TransactionDate = c.TransactionDate
	m.ReferenceID = c.ReferenceID
	m.ReferenceType = c.ReferenceType
}
