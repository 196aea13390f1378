package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// ErrTransactionPanicked is returned by Do when fn panics
var ErrTransactionPanicked = errors.New("ledger transaction panicked")

// GormLedgerUnitOfWork implements finance.LedgerUnitOfWork using GORM transactions
type GormLedgerUnitOfWork struct {
	db *gorm.DB
}

// NewGormLedgerUnitOfWork creates a new GormLedgerUnitOfWork
func NewGormLedgerUnitOfWork(db *gorm.DB) *GormLedgerUnitOfWork {
	return &GormLedgerUnitOfWork{db: db}
}

// Do runs fn inside one database transaction. gorm rolls back when fn
// returns an error or panics; the panic is recovered here and returned.
func (u *GormLedgerUnitOfWork) Do(ctx context.Context, fn func(repos finance.LedgerRepositories) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransactionPanicked, r)
		}
	}()

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories hands out repositories bound to one transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r *gormLedgerRepositories) Expenses() finance.ExpenseWriter {
	return NewGormExpenseRepository(r.tx)
}

func (r *gormLedgerRepositories) Categories() finance.CategoryReader {
	return NewGormExpenseCategoryRepository(r.tx)
}

func (r *gormLedgerRepositories) CashFlows() finance.CashFlowAppender {
	return NewGormCashFlowRepository(r.tx)
}

var (
	_ finance.LedgerUnitOfWork   = (*GormLedgerUnitOfWork)(nil)
	_ finance.LedgerRepositories = (*gormLedgerRepositories)(nil)
)
