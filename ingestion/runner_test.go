package ingestion

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailsync/database"
	"retailsync/importer"
	"retailsync/internal/domain/models"
	"retailsync/pipeline"
)

const retailCSV = `Transaction_ID,Date,Product,Total_Items,City,Store_Type,Discount_Applied
1000000001,2022-01-01,"['Onions', 'Egg (Turkey)']",3,Chicago,Supermarket,True
1000000002,2022-01-02,Soap - Lemon,,Boston,Pharmacy,False
,2022-01-03,['Tea'],1,Boston,Pharmacy,False
1000000004,2022-01-04,,2,Boston,Pharmacy,False
`

const warehouseCSV = `Product_Name,Stock_Quantity
Onion,100
Eggs,
Hair Gel,abc
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func testOptions(t *testing.T, retail, warehouse string) Options {
	dir := t.TempDir()
	return Options{
		RetailPath:    writeFile(t, dir, "Retail.csv", retail),
		WarehousePath: writeFile(t, dir, "Warehouse.csv", warehouse),
		Reader:        importer.DefaultReaderConfig(),
		Database: database.DBConfig{
			Driver: database.DriverSQLite,
			DSN:    filepath.Join(dir, "retail_inventory.db"),
		},
		CommitBatch: 2,
	}
}

func TestRunner_EndToEnd(t *testing.T) {
	opts := testOptions(t, retailCSV, warehouseCSV)

	summary, err := NewRunner(opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSuccess, summary.Status)
	assert.NotEmpty(t, summary.RunID)

	assert.Equal(t, 4, summary.Retail.SourceRows)
	assert.Equal(t, 2, summary.Retail.DiscardedMissingIdentity)
	assert.Equal(t, 1, summary.Retail.QuantityDefaulted)
	assert.Equal(t, 3, summary.Retail.TotalExplodedRows)
	assert.Equal(t, 3, summary.Retail.UniqueSKUs)

	assert.Equal(t, 3, summary.Warehouse.TotalRows)
	assert.Equal(t, 1, summary.Warehouse.StockMissing)
	assert.Equal(t, 1, summary.Warehouse.StockNotNumeric)

	assert.Equal(t, 2, summary.Matching.MatchedSKUs)
	assert.Equal(t, 1, summary.Matching.UnmatchedSKUs)
	assert.Equal(t, []string{"SOAP"}, summary.Matching.UnmatchedList)
	assert.Equal(t, 4, summary.ProductsCatalogSize)

	assert.True(t, summary.Pipeline.Completed)
	assert.Equal(t, int64(3), summary.Pipeline.Durable)
	assert.Equal(t, "STOPPED", summary.Pipeline.State)

	assert.Equal(t, int64(3), summary.Tables[database.TableRetailTransactions])
	assert.Equal(t, int64(3), summary.Tables[database.TableWarehouseInventory])
	assert.Equal(t, int64(4), summary.Tables[database.TableProducts])

	types := make(map[models.DataQualityAlertType]bool)
	for _, a := range summary.Alerts {
		types[a.Type] = true
	}
	assert.True(t, types[models.AlertTypeHighDiscardRate])
	assert.True(t, types[models.AlertTypeNonNumericStock])

	conn, err := sql.Open("sqlite3", opts.Database.DSN)
	require.NoError(t, err)
	defer conn.Close()

	rows, err := conn.Query(`SELECT order_id, product_name, normalized_sku, quantity, warehouse_match
		FROM retail_transactions ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		orderID, product, sku string
		quantity              int
		match                 string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.orderID, &r.product, &r.sku, &r.quantity, &r.match))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []row{
		{"1000000001", "Onions", "ONION", 3, "TRUE"},
		{"1000000001", "Egg (Turkey)", "EGG", 3, "TRUE"},
		{"1000000002", "Soap - Lemon", "SOAP", 1, "FALSE"},
	}, got)

	var base string
	require.NoError(t, conn.QueryRow(`SELECT base_product_name FROM products WHERE normalized_sku = 'HAIR_GEL'`).Scan(&base))
	assert.Equal(t, "HAIR GEL", base)
}

func TestRunner_RerunReplacesTables(t *testing.T) {
	opts := testOptions(t, retailCSV, warehouseCSV)

	_, err := NewRunner(opts).Run(context.Background())
	require.NoError(t, err)
	summary, err := NewRunner(opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Tables[database.TableRetailTransactions])
	assert.Equal(t, int64(4), summary.Tables[database.TableProducts])
}

func TestRunner_MissingSourceDoesNotTouchStorage(t *testing.T) {
	opts := testOptions(t, retailCSV, warehouseCSV)
	opts.RetailPath = filepath.Join(t.TempDir(), "absent.csv")

	summary, err := NewRunner(opts).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, importer.ErrSourceUnreadable)
	assert.Equal(t, models.RunStatusFailed, summary.Status)
	assert.NotEmpty(t, summary.Error)
	assert.False(t, database.Exists(opts.Database), "database must not be created on fatal input error")
}

func TestRunner_MissingIdentityColumn(t *testing.T) {
	opts := testOptions(t, "Transaction_ID,Date\n1,2022-01-01\n", warehouseCSV)

	summary, err := NewRunner(opts).Run(context.Background())

	assert.ErrorIs(t, err, importer.ErrMissingColumn)
	assert.Equal(t, models.RunStatusFailed, summary.Status)
	assert.False(t, database.Exists(opts.Database))
}

func TestRunner_CancelledPipelineIsIncomplete(t *testing.T) {
	opts := testOptions(t, retailCSV, warehouseCSV)
	opts.Pipeline = pipeline.Config{EventsPerSecond: 1, Burst: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	summary, err := NewRunner(opts).Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, models.RunStatusIncomplete, summary.Status)
	assert.False(t, summary.Pipeline.Completed)
}

func TestBuildAlerts_PipelineFailures(t *testing.T) {
	s := &models.RunSummary{
		Retail:   models.RetailSummary{SourceRows: 100, DiscardedMissingIdentity: 5, ListParseFallbacks: 2},
		Pipeline: models.PipelineSummary{Failed: 3},
	}

	alerts := buildAlerts(s)

	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertTypeListParseFallback, alerts[0].Type)
	assert.Equal(t, models.AlertTypePipelineWriteError, alerts[1].Type)
	assert.Equal(t, "error", alerts[1].Severity)
}
