package finance

import (
	"context"
	"errors"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ScopeFor returns the read scope of a principal.
// Tenant members see their tenant; a tenant-less admin sees everything;
// any other tenant-less principal sees only the rows it created.
func ScopeFor(p *identity.Principal) finance.Scope {
	switch {
	case p.HasTenant():
		return finance.Scope{TenantID: p.TenantID()}
	case p.IsAdmin():
		return finance.Scope{}
	default:
		return finance.Scope{CreatedBy: p.SubjectID()}
	}
}

// LedgerQueryService serves read-only views of expenses and cash flows
type LedgerQueryService struct {
	expenses  finance.ExpenseRepository
	cashFlows finance.CashFlowRepository
	logger    *zap.Logger
}

// NewLedgerQueryService creates a new LedgerQueryService
func NewLedgerQueryService(expenses finance.ExpenseRepository, cashFlows finance.CashFlowRepository, log *zap.Logger) *LedgerQueryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerQueryService{
		expenses:  expenses,
		cashFlows: cashFlows,
		logger:    log,
	}
}

// ListExpenses returns a page of expenses visible to p
func (s *LedgerQueryService) ListExpenses(ctx context.Context, p *identity.Principal, filter shared.Filter) (*shared.Paginated[ExpenseResponse], error) {
	filter = filter.Normalize()
	items, total, err := s.expenses.List(ctx, ScopeFor(p), filter)
	if err != nil {
		return nil, err
	}

	out := make([]ExpenseResponse, len(items))
	for i := range items {
		out[i] = ToExpenseResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetExpense returns one expense visible to p
func (s *LedgerQueryService) GetExpense(ctx context.Context, p *identity.Principal, id int64) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByID(ctx, ScopeFor(p), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, finance.ErrExpenseNotFound
		}
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// ListCashFlows returns a page of ledger entries visible to p
func (s *LedgerQueryService) ListCashFlows(ctx context.Context, p *identity.Principal, filter finance.CashFlowFilter) (*shared.Paginated[CashFlowResponse], error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, shared.ErrValidation.WithMessage("Unknown cash flow type")
	}
	filter.Filter = filter.Filter.Normalize()

	items, total, err := s.cashFlows.List(ctx, ScopeFor(p), filter)
	if err != nil {
		return nil, err
	}

	out := make([]CashFlowResponse, len(items))
	for i := range items {
		out[i] = ToCashFlowResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}
