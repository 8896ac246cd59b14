package importer

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// Колонки розничной выгрузки
const (
	RetailColTransactionID = "Transaction_ID"
	RetailColDate          = "Date"
	RetailColProduct       = "Product"
	RetailColTotalItems    = "Total_Items"
	RetailColCity          = "City"
	RetailColStoreType     = "Store_Type"
	RetailColDiscount      = "Discount_Applied"
)

// DefaultQuantity количество, подставляемое вместо отсутствующего или нечислового
const DefaultQuantity = 1

// RetailRow строка розничной выгрузки до разворачивания списка товаров
type RetailRow struct {
	OrderID      string
	OrderDate    *string
	ProductField string
	Quantity     int
	City         *string
	StoreType    *string
	OnlineFlag   *string
	SourceRow    int
}

// RetailLoadStats счетчики загрузки розничного источника
type RetailLoadStats struct {
	SourceRows               int `json:"source_rows"`
	DiscardedMissingIdentity int `json:"discarded_missing_identity"`
	QuantityDefaulted        int `json:"quantity_defaulted"`
}

// retailColumns индексы колонок розничной таблицы
type retailColumns struct {
	orderID, date, product, quantity, city, storeType, discount int
}

// LoadRetail читает розничную выгрузку с диска
func LoadRetail(path string, config ReaderConfig) ([]RetailRow, RetailLoadStats, error) {
	table, err := ReadTable(path, config)
	if err != nil {
		return nil, RetailLoadStats{}, err
	}
	return LoadRetailTable(table)
}

// LoadRetailTable переводит таблицу в строки розничных транзакций.
// Строки без Transaction_ID или Product отбрасываются и учитываются в счетчике.
// Отсутствие самих колонок идентичности является фатальной ошибкой.
func LoadRetailTable(table *Table) ([]RetailRow, RetailLoadStats, error) {
	stats := RetailLoadStats{SourceRows: len(table.Rows)}

	cols := retailColumns{
		orderID:   table.ColumnIndex(RetailColTransactionID),
		date:      table.ColumnIndex(RetailColDate),
		product:   table.ColumnIndex(RetailColProduct),
		quantity:  table.ColumnIndex(RetailColTotalItems),
		city:      table.ColumnIndex(RetailColCity),
		storeType: table.ColumnIndex(RetailColStoreType),
		discount:  table.ColumnIndex(RetailColDiscount),
	}

	var missing []string
	if cols.orderID < 0 {
		missing = append(missing, RetailColTransactionID)
	}
	if cols.product < 0 {
		missing = append(missing, RetailColProduct)
	}
	if len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: %s in %s", ErrMissingColumn, strings.Join(missing, ", "), table.Source)
	}

	rows := make([]RetailRow, 0, len(table.Rows))
	for i, record := range table.Rows {
		orderID, hasID := cell(record, cols.orderID)
		product, hasProduct := cell(record, cols.product)
		if !hasID || !hasProduct {
			stats.DiscardedMissingIdentity++
			continue
		}

		quantity, ok := parseQuantity(record, cols.quantity)
		if !ok {
			stats.QuantityDefaulted++
		}

		rows = append(rows, RetailRow{
			OrderID:      strings.TrimSpace(orderID),
			OrderDate:    optionalCell(record, cols.date),
			ProductField: product,
			Quantity:     quantity,
			City:         optionalCell(record, cols.city),
			StoreType:    optionalCell(record, cols.storeType),
			OnlineFlag:   optionalCell(record, cols.discount),
			SourceRow:    i + 1,
		})
	}

	if stats.DiscardedMissingIdentity > 0 || stats.QuantityDefaulted > 0 {
		log.Printf("Retail source %s: %d rows discarded (missing identity), %d quantities defaulted to %d",
			table.Source, stats.DiscardedMissingIdentity, stats.QuantityDefaulted, DefaultQuantity)
	}

	return rows, stats, nil
}

// parseQuantity возвращает количество и признак того, что оно взято из источника.
// Дробные значения усекаются к нулю.
func parseQuantity(record []string, idx int) (int, bool) {
	raw, ok := cell(record, idx)
	if !ok {
		return DefaultQuantity, false
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return DefaultQuantity, false
	}
	return int(value.IntPart()), true
}
