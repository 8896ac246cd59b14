package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"retailsync/database"
	"retailsync/internal/domain/models"
	apperrors "retailsync/server/errors"
	"retailsync/server/middleware"
)

// QueryStore операции чтения базы результатов, нужные API
type QueryStore interface {
	Ping(ctx context.Context) error
	Driver() string
	TableCounts(ctx context.Context) (map[string]int64, error)
	CountMatches(ctx context.Context) (database.MatchCounts, error)
	UnmatchedSKUs(ctx context.Context) ([]database.UnmatchedSKU, error)
	ListProducts(ctx context.Context, search string, limit, offset int) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, sku string) (*models.Product, error)
	ListTransactions(ctx context.Context, filter database.TransactionFilter) ([]models.RetailTransaction, error)
	ListInventory(ctx context.Context, sku string, limit, offset int) ([]models.InventoryItem, error)
}

// QueryHandler обработчики API только для чтения
type QueryHandler struct {
	store QueryStore
}

// NewQueryHandler создает обработчик запросов к базе результатов
func NewQueryHandler(store QueryStore) *QueryHandler {
	return &QueryHandler{store: store}
}

type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type productsQuery struct {
	pageQuery
	Search string `form:"q"`
}

type transactionsQuery struct {
	pageQuery
	SKU     string `form:"sku"`
	OrderID string `form:"order_id"`
	Matched *bool  `form:"matched"`
}

type inventoryQuery struct {
	pageQuery
	SKU string `form:"sku"`
}

// @Summary Health check
// @Description Checks that the results database is reachable
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} ErrorResponse
// @Router /health [get]
// Health обрабатывает GET /health
func (h *QueryHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		middleware.HandleError(c, apperrors.StoreUnavailable(err))
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "up", Driver: h.store.Driver()})
}

// @Summary Results statistics
// @Description Row counts per table and matched/unmatched transaction totals
// @Tags reconciliation
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/stats [get]
// Stats обрабатывает GET /api/v1/stats
func (h *QueryHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	tables, err := h.store.TableCounts(ctx)
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("count tables", err))
		return
	}
	counts, err := h.store.CountMatches(ctx)
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("count matches", err))
		return
	}
	unmatched, err := h.store.UnmatchedSKUs(ctx)
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("list unmatched SKUs", err))
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Tables:        tables,
		MatchedRows:   counts.Matched,
		UnmatchedRows: counts.Unmatched,
		UnmatchedSKUs: len(unmatched),
	})
}

// @Summary List catalog products
// @Tags catalog
// @Produce json
// @Param q query string false "SKU substring"
// @Param limit query int false "Page size (1-1000)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/products [get]
// ListProducts обрабатывает GET /api/v1/products
func (h *QueryHandler) ListProducts(c *gin.Context) {
	var q productsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleError(c, apperrors.InvalidQuery(err))
		return
	}
	limit, offset := database.NormalizePage(q.Limit, q.Offset)

	products, total, err := h.store.ListProducts(c.Request.Context(), q.Search, limit, offset)
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("list products", err))
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: products, Total: &total, Limit: limit, Offset: offset})
}

// @Summary Get product by SKU
// @Tags catalog
// @Produce json
// @Param sku path string true "Normalized SKU"
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/products/{sku} [get]
// GetProduct обрабатывает GET /api/v1/products/:sku
func (h *QueryHandler) GetProduct(c *gin.Context) {
	sku := strings.ToUpper(strings.TrimSpace(c.Param("sku")))
	if sku == "" {
		middleware.HandleError(c, apperrors.BadRequest("SKU is required"))
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), sku)
	if errors.Is(err, database.ErrNotFound) {
		middleware.HandleError(c, apperrors.NotFound("Product", sku, err))
		return
	}
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("get product", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

// @Summary List retail transactions
// @Description Transactions in insertion order, optionally filtered
// @Tags reconciliation
// @Produce json
// @Param sku query string false "Normalized SKU"
// @Param order_id query string false "Order ID"
// @Param matched query bool false "Warehouse match flag"
// @Param limit query int false "Page size (1-1000)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/transactions [get]
// ListTransactions обрабатывает GET /api/v1/transactions
func (h *QueryHandler) ListTransactions(c *gin.Context) {
	var q transactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleError(c, apperrors.InvalidQuery(err))
		return
	}
	limit, offset := database.NormalizePage(q.Limit, q.Offset)

	records, err := h.store.ListTransactions(c.Request.Context(), database.TransactionFilter{
		SKU:     strings.ToUpper(strings.TrimSpace(q.SKU)),
		OrderID: q.OrderID,
		Matched: q.Matched,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("list transactions", err))
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: records, Limit: limit, Offset: offset})
}

// @Summary List warehouse inventory
// @Tags reconciliation
// @Produce json
// @Param sku query string false "Normalized SKU"
// @Param limit query int false "Page size (1-1000)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/inventory [get]
// ListInventory обрабатывает GET /api/v1/inventory
func (h *QueryHandler) ListInventory(c *gin.Context) {
	var q inventoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleError(c, apperrors.InvalidQuery(err))
		return
	}
	limit, offset := database.NormalizePage(q.Limit, q.Offset)

	items, err := h.store.ListInventory(c.Request.Context(), strings.ToUpper(strings.TrimSpace(q.SKU)), limit, offset)
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("list inventory", err))
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: items, Limit: limit, Offset: offset})
}

// @Summary Unmatched retail SKUs
// @Description Retail SKUs with no warehouse record, with row and quantity totals
// @Tags reconciliation
// @Produce json
// @Success 200 {array} database.UnmatchedSKU
// @Router /api/v1/unmatched [get]
// Unmatched обрабатывает GET /api/v1/unmatched
func (h *QueryHandler) Unmatched(c *gin.Context) {
	unmatched, err := h.store.UnmatchedSKUs(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, apperrors.FromStore("list unmatched SKUs", err))
		return
	}
	c.JSON(http.StatusOK, unmatched)
}

// @Summary API error metrics
// @Tags system
// @Produce json
// @Success 200 {object} errors.ErrorMetrics
// @Router /api/v1/errors [get]
// ErrorMetrics обрабатывает GET /api/v1/errors
func (h *QueryHandler) ErrorMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetErrorMetrics().GetMetrics())
}
