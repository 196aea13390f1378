package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts ledger write outcomes.
// A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	expensesRecorded   *Counter
	snapshotsDegraded  *Counter
	transactionsFailed *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	recorded, err := NewCounter(meter,
		"ledger_expenses_recorded_total",
		"Expenses committed together with their cash-flow entry",
		"{expense}")
	if err != nil {
		return nil, err
	}
	degraded, err := NewCounter(meter,
		"ledger_category_snapshot_degraded_total",
		"Ledger entries written with the Unknown category snapshot",
		"{entry}")
	if err != nil {
		return nil, err
	}
	failed, err := NewCounter(meter,
		"ledger_transaction_failed_total",
		"Ledger transactions rolled back on a persistence failure",
		"{transaction}")
	if err != nil {
		return nil, err
	}
	return &LedgerMetrics{
		expensesRecorded:   recorded,
		snapshotsDegraded:  degraded,
		transactionsFailed: failed,
	}, nil
}

// ExpenseRecorded counts one committed expense for tenantID.
func (m *LedgerMetrics) ExpenseRecorded(ctx context.Context, tenantID string, degraded bool) {
	if m == nil {
		return
	}
	m.expensesRecorded.Inc(ctx, AttrTenantID.String(tenantID))
	if degraded {
		m.snapshotsDegraded.Inc(ctx, AttrTenantID.String(tenantID))
	}
}

// TransactionFailed counts one rolled back ledger transaction.
func (m *LedgerMetrics) TransactionFailed(ctx context.Context, tenantID string) {
	if m == nil {
		return
	}
	m.transactionsFailed.Inc(ctx, AttrTenantID.String(tenantID))
}
