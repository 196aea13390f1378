package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultTransactionTimeout bounds the lifetime of one ledger transaction
const DefaultTransactionTimeout = 10 * time.Second

// LedgerPolicy configures how the ledger writer reacts to partial failures
type LedgerPolicy struct {
	// StrictCategoryLookup aborts the write when the category is missing
	// instead of snapshotting the Unknown sentinel.
	StrictCategoryLookup bool
	TransactionTimeout   time.Duration
}

// DefaultLedgerPolicy returns the lenient policy with the default timeout
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{
		StrictCategoryLookup: false,
		TransactionTimeout:   DefaultTransactionTimeout,
	}
}

// RecordExpenseResult is the canonical outcome of a committed expense write
type RecordExpenseResult struct {
	Expense                  *finance.Expense
	CashFlow                 *finance.CashFlow
	CategorySnapshotDegraded bool
}

// LedgerWriter records money-moving mutations so that the record table
// and the cash-flow ledger change together or not at all.
type LedgerWriter struct {
	uow     finance.LedgerUnitOfWork
	policy  LedgerPolicy
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// LedgerWriterOption configures a LedgerWriter
type LedgerWriterOption func(*LedgerWriter)

// WithLedgerMetrics counts committed and rolled back writes on m
func WithLedgerMetrics(m *telemetry.LedgerMetrics) LedgerWriterOption {
	return func(w *LedgerWriter) {
		w.metrics = m
	}
}

// NewLedgerWriter creates a new LedgerWriter
func NewLedgerWriter(uow finance.LedgerUnitOfWork, policy LedgerPolicy, log *zap.Logger, opts ...LedgerWriterOption) *LedgerWriter {
	if policy.TransactionTimeout <= 0 {
		policy.TransactionTimeout = DefaultTransactionTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &LedgerWriter{
		uow:    uow,
		policy: policy,
		logger: log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RecordExpense validates the payload, then inserts the expense and its
// ledger entry in one transaction.
//
// Errors:
//   - VALIDATION_ERROR when the payload is rejected; no transaction is opened
//   - finance.ErrCategoryNotFound when the category is missing and the policy is strict
//   - finance.ErrTransactionFailed for any persistence failure; nothing is written
func (w *LedgerWriter) RecordExpense(ctx context.Context, principal *identity.Principal, in finance.ExpenseInput) (_ *RecordExpenseResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LedgerWriter", "RecordExpense",
		attribute.Int64("category_id", in.CategoryID))
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.SetOK(span)
		}
		span.End()
	}()

	if principal == nil {
		return nil, identity.Unauthenticated(errors.New("no principal on ledger write"))
	}

	expense, err := finance.NewExpense(principal.TenantID(), principal.SubjectID(), in)
	if err != nil {
		return nil, err
	}

	log := logger.WithLogger(ctx, w.logger)

	txCtx, cancel := context.WithTimeout(ctx, w.policy.TransactionTimeout)
	defer cancel()

	var (
		entry    *finance.CashFlow
		degraded bool
	)
	err = w.uow.Do(txCtx, func(repos finance.LedgerRepositories) error {
		if err := repos.Expenses().Create(txCtx, expense); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}

		snapshot, err := repos.Categories().FindNameByID(txCtx, expense.CategoryID)
		switch {
		case errors.Is(err, finance.ErrCategoryNotFound):
			if w.policy.StrictCategoryLookup {
				return err
			}
			log.Warn("Expense category not found, ledger snapshot degraded",
				zap.Int64("expense_id", expense.ID),
				zap.Int64("category_id", expense.CategoryID))
			snapshot = finance.UnknownCategory
			degraded = true
		case err != nil:
			return fmt.Errorf("lookup category: %w", err)
		}

		entry = finance.NewExpenseCashFlow(expense, snapshot)
		if err := repos.CashFlows().Append(txCtx, entry); err != nil {
			return fmt.Errorf("append cash flow: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, finance.ErrCategoryNotFound) {
			log.Warn("Expense rejected, category not found",
				zap.Int64("category_id", in.CategoryID))
			return nil, err
		}
		log.Error("Ledger transaction rolled back",
			zap.Int64("category_id", in.CategoryID),
			zap.Error(err))
		w.metrics.TransactionFailed(ctx, principal.TenantID())
		return nil, finance.ErrTransactionFailed.WithCause(err)
	}

	log.Info("Expense recorded",
		zap.Int64("expense_id", expense.ID),
		zap.Int64("cash_flow_id", entry.ID),
		zap.Bool("category_snapshot_degraded", degraded))
	w.metrics.ExpenseRecorded(ctx, principal.TenantID(), degraded)

	return &RecordExpenseResult{
		Expense:                  expense,
		CashFlow:                 entry,
		CategorySnapshotDegraded: degraded,
	}, nil
}
