package finance

import "github.com/shopdesk/backend/internal/domain/shared"

const (
	CodeDependencyLookupFailed = "DEPENDENCY_LOOKUP_FAILED"
	CodeTransactionFailed      = "TRANSACTION_FAILED"
)

// Finance domain errors
var (
	ErrInvalidCategoryID  = shared.NewDomainError("VALIDATION_ERROR", "Category ID must be positive")
	ErrInvalidDescription = shared.NewDomainError("VALIDATION_ERROR", "Description must be 1 to 500 characters")
	ErrInvalidAmount      = shared.NewDomainError("VALIDATION_ERROR", "Amount must be positive")
	ErrAmountPrecision    = shared.NewDomainError("VALIDATION_ERROR", "Amount cannot have more than 2 decimal places")
	ErrAmountTooLarge     = shared.NewDomainError("VALIDATION_ERROR", "Amount exceeds 999999999999.99")
	ErrInvalidExpenseDate = shared.NewDomainError("VALIDATION_ERROR", "Expense date is required")
	ErrFieldTooLong       = shared.NewDomainError("VALIDATION_ERROR", "Field exceeds maximum length")
	ErrMissingActor       = shared.NewDomainError("VALIDATION_ERROR", "Creator is required")
	ErrInvalidCategory    = shared.NewDomainError("VALIDATION_ERROR", "Category name must be 1 to 100 characters")

	ErrCategoryNotFound  = shared.NewDomainError(CodeDependencyLookupFailed, "Expense category not found")
	ErrCategoryNameTaken = shared.NewDomainError("ALREADY_EXISTS", "Expense category name already exists")
	ErrExpenseNotFound   = shared.NewDomainError("NOT_FOUND", "Expense not found")
	ErrTransactionFailed = shared.NewDomainError(CodeTransactionFailed, "Ledger transaction failed, please retry")
)
