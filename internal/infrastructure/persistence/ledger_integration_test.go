//go:build integration

package persistence_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	appfinance "github.com/shopdesk/backend/internal/application/finance"
	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/migration"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"go.uber.org/zap/zaptest"
)

const migrationsDir = "../../../migrations"

// newPostgres starts a throwaway Postgres container with every migration applied
func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopdesk_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, migrationsDir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if raw, err := db.DB(); err == nil {
			_ = raw.Close()
		}
	})
	return db
}

func seededCategoryID(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Table("expense_categories").Where("name = ?", name).Pluck("id", &id).Error)
	require.NotZero(t, id, "category %q not seeded", name)
	return id
}

func countTable(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestLedgerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	db := newPostgres(t)
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	owner, err := identity.NewPrincipal("user_owner", "owner@example.com", identity.RoleTenantOwner, "T1")
	require.NoError(t, err)
	otherTenant, err := identity.NewPrincipal("user_other", "other@example.com", identity.RoleTenantOwner, "T2")
	require.NoError(t, err)

	writer := appfinance.NewLedgerWriter(persistence.NewGormLedgerUnitOfWork(db), appfinance.DefaultLedgerPolicy(), log)
	queries := appfinance.NewLedgerQueryService(
		persistence.NewGormExpenseRepository(db),
		persistence.NewGormCashFlowRepository(db),
		log,
	)
	rent := seededCategoryID(t, db, "Rent")

	t.Run("expense and ledger entry commit together", func(t *testing.T) {
		result, err := writer.RecordExpense(ctx, owner, finance.ExpenseInput{
			CategoryID:  rent,
			Description: "October rent",
			Amount:      decimal.RequireFromString("1250.50"),
			ExpenseDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.Equal(t, "Rent", result.CashFlow.Category)
		assert.Equal(t, result.Expense.ID, result.CashFlow.ReferenceID)

		got, err := queries.GetExpense(ctx, owner, result.Expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "1250.50", got.Amount)
		assert.Equal(t, "T1", got.TenantID)

		flows, err := queries.ListCashFlows(ctx, owner, finance.CashFlowFilter{
			Filter:        shared.DefaultFilter(),
			ReferenceType: "expense",
			ReferenceID:   result.Expense.ID,
		})
		require.NoError(t, err)
		require.Len(t, flows.Items, 1)
		assert.Equal(t, string(finance.CashFlowTypeExpense), flows.Items[0].Type)
		assert.Equal(t, "1250.50", flows.Items[0].Amount)
	})

	t.Run("other tenants cannot read the expense", func(t *testing.T) {
		page, err := queries.ListExpenses(ctx, otherTenant, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})

	t.Run("strict lookup writes nothing for a missing category", func(t *testing.T) {
		before := countTable(t, db, "cash_flows")
		policy := appfinance.DefaultLedgerPolicy()
		policy.StrictCategoryLookup = true
		strict := appfinance.NewLedgerWriter(persistence.NewGormLedgerUnitOfWork(db), policy, log)

		_, err := strict.RecordExpense(ctx, owner, finance.ExpenseInput{
			CategoryID:  987654,
			Description: "Ghost",
			Amount:      decimal.RequireFromString("1.00"),
			ExpenseDate: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, finance.ErrCategoryNotFound)
		assert.Equal(t, before, countTable(t, db, "cash_flows"))
	})

	t.Run("concurrent writes each produce one pair", func(t *testing.T) {
		beforeExpenses := countTable(t, db, "expenses")
		beforeFlows := countTable(t, db, "cash_flows")

		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := writer.RecordExpense(ctx, owner, finance.ExpenseInput{
					CategoryID:  rent,
					Description: "Parallel write",
					Amount:      decimal.RequireFromString("10.00"),
					ExpenseDate: time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		assert.Equal(t, beforeExpenses+writers, countTable(t, db, "expenses"))
		assert.Equal(t, beforeFlows+writers, countTable(t, db, "cash_flows"))
	})

	t.Run("duplicate category name is rejected", func(t *testing.T) {
		categories := persistence.NewGormExpenseCategoryRepository(db)
		category, err := finance.NewExpenseCategory("Rent", "")
		require.NoError(t, err)

		err = categories.Create(ctx, category)

		assert.ErrorIs(t, err, finance.ErrCategoryNameTaken)
	})
}
