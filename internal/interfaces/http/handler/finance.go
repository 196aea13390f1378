package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	financeapp "github.com/shopdesk/backend/internal/application/finance"
	"github.com/shopdesk/backend/internal/domain/finance"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
)

// ExpenseRecorder writes expenses and their ledger entries
type ExpenseRecorder interface {
	RecordExpense(ctx context.Context, p *identity.Principal, in finance.ExpenseInput) (*financeapp.RecordExpenseResult, error)
}

// LedgerReader serves scoped finance reads
type LedgerReader interface {
	ListExpenses(ctx context.Context, p *identity.Principal, filter shared.Filter) (*shared.Paginated[financeapp.ExpenseResponse], error)
	GetExpense(ctx context.Context, p *identity.Principal, id int64) (*financeapp.ExpenseResponse, error)
	ListCashFlows(ctx context.Context, p *identity.Principal, filter finance.CashFlowFilter) (*shared.Paginated[financeapp.CashFlowResponse], error)
}

// CategoryManager manages expense categories
type CategoryManager interface {
	List(ctx context.Context, activeOnly bool) ([]financeapp.ExpenseCategoryResponse, error)
	Create(ctx context.Context, p *identity.Principal, in financeapp.CreateExpenseCategoryInput) (*financeapp.ExpenseCategoryResponse, error)
}

// FinanceHandler handles expense and ledger endpoints
type FinanceHandler struct {
	BaseHandler
	writer     ExpenseRecorder
	reader     LedgerReader
	categories CategoryManager
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(writer ExpenseRecorder, reader LedgerReader, categories CategoryManager) *FinanceHandler {
	return &FinanceHandler{
		writer:     writer,
		reader:     reader,
		categories: categories,
	}
}

// RecordExpense godoc
// POST /finance/expenses
func (h *FinanceHandler) RecordExpense(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if err := finance.ValidateAmount(req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.writer.RecordExpense(c.Request.Context(), p, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, financeapp.ToRecordExpenseResponse(result))
}

// ListExpenses godoc
// GET /finance/expenses
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.reader.ListExpenses(c.Request.Context(), p, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// GetExpense godoc
// GET /finance/expenses/:id
func (h *FinanceHandler) GetExpense(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.reader.GetExpense(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ListCashFlows godoc
// GET /finance/cash-flows
func (h *FinanceHandler) ListCashFlows(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ListCashFlowsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.reader.ListCashFlows(c.Request.Context(), p, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// ListCategories godoc
// GET /finance/expense-categories
func (h *FinanceHandler) ListCategories(c *gin.Context) {
	var req ListCategoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items, err := h.categories.List(c.Request.Context(), !req.IncludeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// CreateCategory godoc
// POST /finance/expense-categories
func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), p, financeapp.CreateExpenseCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// FinanceRoutes returns the finance route group
func FinanceRoutes(h *FinanceHandler) *router.DomainGroup {
	group := router.NewDomainGroup("finance", "/finance")

	group.POST("/expenses", h.RecordExpense)
	group.GET("/expenses", h.ListExpenses)
	group.GET("/expenses/:id", h.GetExpense)
	group.GET("/cash-flows", h.ListCashFlows)

	categories := group.Group("expense-categories", "/expense-categories")
	categories.GET("", h.ListCategories)
	categories.POST("", middleware.RequireRoles(identity.RoleAdmin), h.CreateCategory)

	return group
}
