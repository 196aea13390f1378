package finance

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Column limits for the expenses table
const (
	MaxDescriptionLength   = 500
	MaxPaymentMethodLength = 50
	MaxReceiptURLLength    = 500
	MaxNotesLength         = 2000
	AmountScale            = 2
	AmountIntegerDigits    = 12
)

// MaxAmount is the largest value a decimal(14,2) column can hold
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Expense is a recorded business expense.
// Every persisted expense has exactly one matching CashFlow entry.
type Expense struct {
	shared.BaseEntity
	TenantID      string
	CategoryID    int64
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	PaymentMethod string
	ReceiptURL    string
	Notes         string
	CreatedBy     string
}

// ExpenseInput carries the caller-supplied fields of a new expense
type ExpenseInput struct {
	CategoryID    int64
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	PaymentMethod string
	ReceiptURL    string
	Notes         string
}

// Validate checks the input without touching any store
func (in ExpenseInput) Validate() error {
	if in.CategoryID <= 0 {
		return ErrInvalidCategoryID
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" || utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	if in.ExpenseDate.IsZero() {
		return ErrInvalidExpenseDate
	}
	if utf8.RuneCountInString(in.PaymentMethod) > MaxPaymentMethodLength {
		return ErrFieldTooLong.WithMessage("Payment method cannot exceed 50 characters")
	}
	if utf8.RuneCountInString(in.ReceiptURL) > MaxReceiptURLLength {
		return ErrFieldTooLong.WithMessage("Receipt URL cannot exceed 500 characters")
	}
	if utf8.RuneCountInString(in.Notes) > MaxNotesLength {
		return ErrFieldTooLong.WithMessage("Notes cannot exceed 2000 characters")
	}
	return nil
}

// ValidateAmount checks that amount fits a positive decimal(14,2) currency value
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Bound the exponent by the coefficient's digit count before any
	// rescaling comparison, which costs time linear in the exponent.
	digits := len(amount.Coefficient().String())
	exp := int(amount.Exponent())
	if exp < -AmountScale && -exp-AmountScale > digits {
		return ErrAmountPrecision
	}
	if digits+exp > AmountIntegerDigits {
		return ErrAmountTooLarge
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrAmountPrecision
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// NewExpense validates in and builds an unsaved expense owned by createdBy
func NewExpense(tenantID, createdBy string, in ExpenseInput) (*Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, ErrMissingActor
	}
	return &Expense{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		CategoryID:    in.CategoryID,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		ExpenseDate:   in.ExpenseDate,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		ReceiptURL:    strings.TrimSpace(in.ReceiptURL),
		Notes:         in.Notes,
		CreatedBy:     createdBy,
	}, nil
}
