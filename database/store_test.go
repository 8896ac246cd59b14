package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"retailsync/internal/domain/models"
	"retailsync/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "retail.db")

	store, err := Open(DBConfig{Driver: DriverSQLite, DSN: dbPath})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.ResetSchema(context.Background()); err != nil {
		t.Fatalf("ResetSchema() failed: %v", err)
	}
	return store
}

func testTransactions() []models.RetailTransaction {
	date := models.StringPtr("2024-01-05")
	return []models.RetailTransaction{
		{OrderID: "1", OrderDate: date, ProductName: "Onions", SKU: "ONION", Quantity: 1, City: models.StringPtr("Chicago"), WarehouseMatch: true},
		{OrderID: "1", OrderDate: date, ProductName: "Egg (Turkey)", SKU: "EGG", Quantity: 1, WarehouseMatch: false},
		{OrderID: "2", ProductName: "Onions", SKU: "ONION", Quantity: 4, WarehouseMatch: true},
	}
}

func TestResetSchema_DropsPreviousRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InsertProducts(ctx, []models.Product{{SKU: "ONION", DisplayName: "ONION"}}); err != nil {
		t.Fatalf("InsertProducts() failed: %v", err)
	}
	if err := store.ResetSchema(ctx); err != nil {
		t.Fatalf("second ResetSchema() failed: %v", err)
	}

	counts, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() failed: %v", err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Errorf("Expected empty %s after reset, got %d rows", table, n)
		}
	}

	var indexes int
	err = store.GetDB().QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'index' AND name IN ('idx_retail_sku', 'idx_warehouse_sku')`).Scan(&indexes)
	if err != nil {
		t.Fatalf("Failed to count indexes: %v", err)
	}
	if indexes != 2 {
		t.Errorf("Expected 2 SKU indexes, got %d", indexes)
	}
}

func TestTransactionWriter_BatchCommits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := store.NewTransactionWriter(2)
	for _, rec := range testTransactions() {
		if err := writer.WriteTransaction(ctx, rec); err != nil {
			t.Fatalf("WriteTransaction() failed: %v", err)
		}
	}
	if writer.Committed() != 2 {
		t.Errorf("Expected 2 committed rows before flush, got %d", writer.Committed())
	}
	if err := writer.Flush(ctx); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if writer.Committed() != 3 {
		t.Errorf("Expected 3 committed rows after flush, got %d", writer.Committed())
	}
	writer.Close()

	txs, err := store.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	// порядок записи сохраняется
	wantSKUs := []string{"ONION", "EGG", "ONION"}
	for i, want := range wantSKUs {
		if txs[i].SKU != want {
			t.Errorf("row %d: expected SKU %s, got %s", i, want, txs[i].SKU)
		}
	}
	if txs[0].City == nil || *txs[0].City != "Chicago" {
		t.Errorf("Expected city Chicago, got %v", txs[0].City)
	}
	if txs[1].City != nil || txs[2].OrderDate != nil {
		t.Errorf("missing optional values must stay NULL")
	}

	var matchText string
	if err := store.GetDB().QueryRow("SELECT warehouse_match FROM retail_transactions WHERE normalized_sku = 'EGG'").Scan(&matchText); err != nil {
		t.Fatalf("Failed to read warehouse_match: %v", err)
	}
	if matchText != "FALSE" {
		t.Errorf("Expected warehouse_match stored as FALSE, got %q", matchText)
	}
}

func TestTransactionWriter_CloseRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := store.NewTransactionWriter(100)
	if err := writer.WriteTransaction(ctx, testTransactions()[0]); err != nil {
		t.Fatalf("WriteTransaction() failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	counts, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() failed: %v", err)
	}
	if counts[TableRetailTransactions] != 0 {
		t.Errorf("uncommitted rows must not be durable, got %d", counts[TableRetailTransactions])
	}
}

func TestTransactionWriter_UnavailableAfterClose(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	store.Close()

	writer := store.NewTransactionWriter(10)
	err := writer.WriteTransaction(ctx, testTransactions()[0])
	if !errors.Is(err, pipeline.ErrSinkUnavailable) {
		t.Fatalf("Expected ErrSinkUnavailable on closed database, got %v", err)
	}
	if err := writer.Flush(ctx); !errors.Is(err, pipeline.ErrSinkUnavailable) {
		t.Errorf("Expected Flush to keep reporting ErrSinkUnavailable, got %v", err)
	}
}

func TestTransactionWriter_InPipeline(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := store.NewTransactionWriter(2)
	defer writer.Close()

	result, err := pipeline.New(writer, pipeline.Config{}).Run(ctx, testTransactions())
	if err != nil {
		t.Fatalf("pipeline Run() failed: %v", err)
	}
	if !result.Completed || result.Durable != 3 {
		t.Errorf("Expected completed run with 3 durable rows, got %+v", result)
	}
}

func TestInventoryAndProducts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	items := []models.InventoryItem{
		{ProductName: "Onion", SKU: "ONION", StockQuantity: decimal.NewNullDecimal(decimal.NewFromInt(120))},
		{ProductName: "Eggs", SKU: "EGG"},
		{ProductName: "Tea (Jasmine)", SKU: "TEA", StockQuantity: decimal.NewNullDecimal(decimal.RequireFromString("7.5"))},
	}
	if err := store.InsertInventory(ctx, items); err != nil {
		t.Fatalf("InsertInventory() failed: %v", err)
	}
	products := []models.Product{
		{SKU: "ONION", DisplayName: "ONION"},
		{SKU: "EGG", DisplayName: "EGG"},
		{SKU: "TEA", DisplayName: "TEA"},
	}
	if err := store.InsertProducts(ctx, products); err != nil {
		t.Fatalf("InsertProducts() failed: %v", err)
	}

	got, err := store.ListInventory(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("ListInventory() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 inventory rows, got %d", len(got))
	}
	if got[1].StockQuantity.Valid {
		t.Errorf("missing stock must stay NULL, got %v", got[1].StockQuantity)
	}
	if !got[2].StockQuantity.Decimal.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("Expected stock 7.5, got %v", got[2].StockQuantity.Decimal)
	}

	list, total, err := store.ListProducts(ctx, "on", 10, 0)
	if err != nil {
		t.Fatalf("ListProducts() failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].SKU != "ONION" {
		t.Errorf("Expected search to find ONION only, got total=%d list=%v", total, list)
	}

	p, err := store.GetProduct(ctx, "TEA")
	if err != nil || p.DisplayName != "TEA" {
		t.Errorf("GetProduct(TEA) = %v, %v", p, err)
	}
	if _, err := store.GetProduct(ctx, "COFFEE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// дубликат SKU в каталоге запрещен первичным ключом
	if err := store.InsertProducts(ctx, products[:1]); err == nil {
		t.Error("Expected primary key violation for duplicate SKU")
	}
}

func TestMatchQueries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := store.NewTransactionWriter(10)
	for _, rec := range testTransactions() {
		if err := writer.WriteTransaction(ctx, rec); err != nil {
			t.Fatalf("WriteTransaction() failed: %v", err)
		}
	}
	if err := writer.Flush(ctx); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	counts, err := store.CountMatches(ctx)
	if err != nil {
		t.Fatalf("CountMatches() failed: %v", err)
	}
	if counts.Matched != 2 || counts.Unmatched != 1 {
		t.Errorf("Expected 2 matched / 1 unmatched, got %+v", counts)
	}

	unmatched, err := store.UnmatchedSKUs(ctx)
	if err != nil {
		t.Fatalf("UnmatchedSKUs() failed: %v", err)
	}
	if len(unmatched) != 1 || unmatched[0].SKU != "EGG" || unmatched[0].Rows != 1 {
		t.Errorf("Unexpected unmatched SKUs: %+v", unmatched)
	}

	matched := true
	onlyMatched, err := store.ListTransactions(ctx, TransactionFilter{Matched: &matched})
	if err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}
	if len(onlyMatched) != 2 {
		t.Errorf("Expected 2 matched rows, got %d", len(onlyMatched))
	}
}

func TestVerifyAndPreview(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InsertProducts(ctx, []models.Product{{SKU: "ONION", DisplayName: "ONION"}}); err != nil {
		t.Fatalf("InsertProducts() failed: %v", err)
	}

	reports, err := store.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if len(reports) != len(ResultTables) {
		t.Fatalf("Expected %d reports, got %d", len(ResultTables), len(reports))
	}
	for _, r := range reports {
		if !r.Exists {
			t.Errorf("table %s reported missing", r.Table)
		}
		if r.Table == TableProducts {
			if r.Rows != 1 || r.Sample["normalized_sku"] != "ONION" {
				t.Errorf("Unexpected products report: %+v", r)
			}
		}
	}

	previews, err := store.Preview(ctx, 5)
	if err != nil {
		t.Fatalf("Preview() failed: %v", err)
	}
	if len(previews) != 3 {
		t.Errorf("Expected 3 tables in preview, got %d", len(previews))
	}
}

func TestVerify_MissingTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	store, err := Open(DBConfig{Driver: DriverSQLite, DSN: dbPath})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	reports, err := store.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	for _, r := range reports {
		if r.Exists {
			t.Errorf("table %s should be reported missing", r.Table)
		}
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(DBConfig{Driver: DriverSQLite, DSN: filepath.Join(dir, "nope.db")}) {
		t.Error("Expected missing sqlite file to be reported")
	}
	if !Exists(DBConfig{Driver: DriverPostgres, DSN: "postgres://localhost/db"}) {
		t.Error("server databases are checked by connecting")
	}
}

func TestDialect(t *testing.T) {
	pg, err := DialectFor(DriverPostgres)
	if err != nil {
		t.Fatalf("DialectFor(postgres) failed: %v", err)
	}
	if got := pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Errorf("Rebind() = %q", got)
	}

	my, _ := DialectFor(DriverMySQL)
	if my.SKUType != "VARCHAR(255)" || my.QuoteIdent("products") != "`products`" {
		t.Errorf("Unexpected MySQL dialect: %+v", my)
	}

	if _, err := DialectFor("oracle"); err == nil {
		t.Error("Expected error for unsupported driver")
	}

	lite, _ := DialectFor(DriverSQLite)
	if !pg.AbortsTxOnError() || my.AbortsTxOnError() || lite.AbortsTxOnError() {
		t.Error("only PostgreSQL aborts the transaction on a statement error")
	}
	if !pg.IsConnectionFailure(&pq.Error{Code: "08006"}) || pg.IsConnectionFailure(&pq.Error{Code: "23505"}) {
		t.Error("connection exceptions must be fatal, constraint violations must not")
	}
	if !my.IsConnectionFailure(&mysql.MySQLError{Number: 2013}) || my.IsConnectionFailure(&mysql.MySQLError{Number: 1062}) {
		t.Error("lost connection must be fatal, duplicate key must not")
	}
}
