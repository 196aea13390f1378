package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB creates an in-memory SQLite database with the finance tables.
// A single connection keeps every query on the same in-memory database.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, ddl := range []string{
		`CREATE TABLE expense_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT,
			created_by TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			expense_date DATETIME NOT NULL,
			payment_method TEXT,
			receipt_url TEXT,
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE cash_flows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT,
			created_by TEXT NOT NULL,
			type TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			transaction_date DATETIME NOT NULL,
			reference_id INTEGER NOT NULL,
			reference_type TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

// newMockGormDB wraps a sqlmock connection in a postgres-dialect gorm DB
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedCategory(t *testing.T, db *gorm.DB, name string, active bool) *finance.ExpenseCategory {
	t.Helper()
	category, err := finance.NewExpenseCategory(name, "")
	require.NoError(t, err)
	category.IsActive = active
	require.NoError(t, NewGormExpenseCategoryRepository(db).Create(t.Context(), category))
	return category
}

func newTestExpense(t *testing.T, tenantID, createdBy string, categoryID int64, amount string) *finance.Expense {
	t.Helper()
	expense, err := finance.NewExpense(tenantID, createdBy, finance.ExpenseInput{
		CategoryID:  categoryID,
		Description: "Electricity bill",
		Amount:      decimal.RequireFromString(amount),
		ExpenseDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return expense
}
