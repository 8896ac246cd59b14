package importer

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"retailsync/internal/domain/models"
)

// Колонки складской выгрузки
const (
	WarehouseColProductName   = "Product_Name"
	WarehouseColStockQuantity = "Stock_Quantity"
)

// WarehouseLoadStats счетчики загрузки складского источника
type WarehouseLoadStats struct {
	SourceRows           int `json:"source_rows"`
	DiscardedMissingName int `json:"discarded_missing_name"`
	StockMissing         int `json:"stock_missing"`
	StockNotNumeric      int `json:"stock_not_numeric"`
}

// LoadWarehouse читает складскую выгрузку с диска
func LoadWarehouse(path string, config ReaderConfig) ([]models.InventoryItem, WarehouseLoadStats, error) {
	table, err := ReadTable(path, config)
	if err != nil {
		return nil, WarehouseLoadStats{}, err
	}
	return LoadWarehouseTable(table)
}

// LoadWarehouseTable переводит таблицу в складские позиции.
// SKU здесь не вычисляется, его заполняет каталог.
// Нечисловой остаток сохраняется как отсутствующий и учитывается отдельно.
func LoadWarehouseTable(table *Table) ([]models.InventoryItem, WarehouseLoadStats, error) {
	stats := WarehouseLoadStats{SourceRows: len(table.Rows)}

	nameIdx := table.ColumnIndex(WarehouseColProductName)
	if nameIdx < 0 {
		return nil, stats, fmt.Errorf("%w: %s in %s", ErrMissingColumn, WarehouseColProductName, table.Source)
	}
	stockIdx := table.ColumnIndex(WarehouseColStockQuantity)

	items := make([]models.InventoryItem, 0, len(table.Rows))
	for i, record := range table.Rows {
		name, ok := cell(record, nameIdx)
		if !ok {
			stats.DiscardedMissingName++
			continue
		}

		item := models.InventoryItem{
			ProductName: name,
			SourceRow:   i + 1,
		}

		raw, hasStock := cell(record, stockIdx)
		switch {
		case !hasStock:
			stats.StockMissing++
		default:
			value, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				stats.StockNotNumeric++
			} else {
				item.StockQuantity = decimal.NullDecimal{Decimal: value, Valid: true}
			}
		}

		items = append(items, item)
	}

	if stats.DiscardedMissingName > 0 || stats.StockNotNumeric > 0 {
		log.Printf("Warehouse source %s: %d rows discarded (missing name), %d non-numeric stock values",
			table.Source, stats.DiscardedMissingName, stats.StockNotNumeric)
	}

	return items, stats, nil
}
