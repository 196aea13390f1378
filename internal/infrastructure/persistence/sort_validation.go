package persistence

import (
	"fmt"
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Anything other than a case-insensitive "asc" yields DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"expense_date": true,
	"amount":       true,
	"category_id":  true,
}

// CashFlowSortFields contains allowed sort fields for cash flows
var CashFlowSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
	"type":             true,
}

// orderClause builds a safe ORDER BY from a filter. The id tiebreak keeps
// paging stable when the sort column has duplicates.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	if field == "id" {
		return fmt.Sprintf("id %s", dir)
	}
	return fmt.Sprintf("%s %s, id %s", field, dir, dir)
}
