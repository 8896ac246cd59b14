package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"retailsync/database"
	"retailsync/internal/domain/models"
)

// QueryHandlerTestSuite проверяет API на заполненной SQLite базе
type QueryHandlerTestSuite struct {
	suite.Suite
	store  *database.Store
	router *gin.Engine
}

func (s *QueryHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	store, err := database.Open(database.DBConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(s.T().TempDir(), "api.db"),
	})
	s.Require().NoError(err)
	s.store = store

	ctx := context.Background()
	s.Require().NoError(store.ResetSchema(ctx))
	s.Require().NoError(store.InsertInventory(ctx, []models.InventoryItem{
		{ProductName: "Onion", SKU: "ONION", StockQuantity: decimal.NewNullDecimal(decimal.NewFromInt(100))},
		{ProductName: "Eggs", SKU: "EGG"},
	}))
	s.Require().NoError(store.InsertProducts(ctx, []models.Product{
		{SKU: "ONION", DisplayName: "ONION"},
		{SKU: "EGG", DisplayName: "EGG"},
		{SKU: "SOAP", DisplayName: "SOAP"},
		{SKU: "HAIR_GEL", DisplayName: "HAIR GEL"},
	}))

	writer := store.NewTransactionWriter(10)
	defer writer.Close()
	for _, rec := range []models.RetailTransaction{
		{OrderID: "1000000001", ProductName: "Onions", SKU: "ONION", Quantity: 3, WarehouseMatch: true},
		{OrderID: "1000000001", ProductName: "Egg (Turkey)", SKU: "EGG", Quantity: 3, WarehouseMatch: true},
		{OrderID: "1000000002", ProductName: "Soap - Lemon", SKU: "SOAP", Quantity: 1, City: models.StringPtr("Boston")},
		{OrderID: "1000000003", ProductName: "Soap", SKU: "SOAP", Quantity: 2},
	} {
		s.Require().NoError(writer.WriteTransaction(ctx, rec))
	}
	s.Require().NoError(writer.Flush(ctx))

	s.router = gin.New()
	RegisterRoutes(s.router, NewQueryHandler(store))
}

func (s *QueryHandlerTestSuite) TearDownSuite() {
	s.store.Close()
}

func (s *QueryHandlerTestSuite) get(path string, out interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func (s *QueryHandlerTestSuite) TestHealth() {
	var resp HealthResponse
	w := s.get("/health", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", resp.Status)
	s.Equal(database.DriverSQLite, resp.Driver)
}

func (s *QueryHandlerTestSuite) TestStats() {
	var resp StatsResponse
	w := s.get("/api/v1/stats", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(4), resp.Tables[database.TableRetailTransactions])
	s.Equal(int64(2), resp.MatchedRows)
	s.Equal(int64(2), resp.UnmatchedRows)
	s.Equal(1, resp.UnmatchedSKUs)
}

func (s *QueryHandlerTestSuite) TestListProducts() {
	var resp struct {
		Items []models.Product `json:"items"`
		Total int64            `json:"total"`
		Limit int              `json:"limit"`
	}
	w := s.get("/api/v1/products?limit=2", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(4), resp.Total)
	s.Equal(2, resp.Limit)
	s.Require().Len(resp.Items, 2)
	s.Equal("EGG", resp.Items[0].SKU)

	w = s.get("/api/v1/products?q=gel", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), resp.Total)
}

func (s *QueryHandlerTestSuite) TestListProductsInvalidLimit() {
	w := s.get("/api/v1/products?limit=5000", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *QueryHandlerTestSuite) TestGetProduct() {
	var p models.Product
	w := s.get("/api/v1/products/hair_gel", &p)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("HAIR GEL", p.DisplayName)

	w = s.get("/api/v1/products/UNKNOWN", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *QueryHandlerTestSuite) TestListTransactions() {
	var resp struct {
		Items []models.RetailTransaction `json:"items"`
	}
	w := s.get("/api/v1/transactions", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(resp.Items, 4)
	s.Equal("ONION", resp.Items[0].SKU)
	s.Equal("EGG", resp.Items[1].SKU)

	w = s.get("/api/v1/transactions?matched=false", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(resp.Items, 2)
	for _, rec := range resp.Items {
		s.False(rec.WarehouseMatch)
	}

	w = s.get("/api/v1/transactions?sku=soap&limit=1&offset=1", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(resp.Items, 1)
	s.Equal("1000000003", resp.Items[0].OrderID)

	w = s.get("/api/v1/transactions?matched=maybe", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *QueryHandlerTestSuite) TestListInventory() {
	var resp struct {
		Items []struct {
			ProductName   string           `json:"product_name"`
			StockQuantity *decimal.Decimal `json:"stock_quantity"`
		} `json:"items"`
	}
	w := s.get("/api/v1/inventory", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(resp.Items, 2)
	s.Require().NotNil(resp.Items[0].StockQuantity)
	s.True(resp.Items[0].StockQuantity.Equal(decimal.NewFromInt(100)))
	s.Nil(resp.Items[1].StockQuantity, "missing stock must stay null")
}

func (s *QueryHandlerTestSuite) TestUnmatched() {
	var resp []database.UnmatchedSKU
	w := s.get("/api/v1/unmatched", &resp)
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(resp, 1)
	s.Equal("SOAP", resp[0].SKU)
	s.Equal(int64(2), resp[0].Rows)
	s.Equal(int64(3), resp[0].Quantity)
}

func TestQueryHandlerSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlerTestSuite))
}

// mockStore хранилище на testify/mock для ошибочных сценариев
type mockStore struct {
	mock.Mock
	QueryStore
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) TableCounts(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func TestQueryHandler_StoreFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &mockStore{}
	store.On("Ping", mock.Anything).Return(errors.New("database is locked"))
	store.On("TableCounts", mock.Anything).Return(nil, errors.New("no such table"))

	router := gin.New()
	RegisterRoutes(router, NewQueryHandler(store))

	tests := []struct {
		path string
		code int
	}{
		{"/health", http.StatusServiceUnavailable},
		{"/api/v1/stats", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tt.code {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.code, w.Code)
		}
	}
	store.AssertExpectations(t)
}
