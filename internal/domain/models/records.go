package models

import (
	"github.com/shopspring/decimal"
)

// Product запись каталога товаров
type Product struct {
	SKU         string `json:"normalized_sku"`
	DisplayName string `json:"base_product_name"`
}

// RetailTransaction строка розничной транзакции после разворачивания списка товаров.
// Необязательные поля представлены указателями: nil означает отсутствующее значение
// в источнике, которое нельзя подменять значением по умолчанию.
type RetailTransaction struct {
	OrderID        string  `json:"order_id"`
	OrderDate      *string `json:"order_date"`
	ProductName    string  `json:"product_name"`
	SKU            string  `json:"normalized_sku"`
	BaseName       string  `json:"-"`
	Quantity       int     `json:"quantity"`
	City           *string `json:"city"`
	StoreType      *string `json:"store_type"`
	OnlineFlag     *string `json:"online_flag"`
	WarehouseMatch bool    `json:"warehouse_match"`
	// SourceRow номер строки исходного файла (с 1, без заголовка)
	SourceRow int `json:"-"`
}

// WarehouseMatchText возвращает флаг в текстовом виде, как он хранится в БД
func (r *RetailTransaction) WarehouseMatchText() string {
	if r.WarehouseMatch {
		return "TRUE"
	}
	return "FALSE"
}

// InventoryItem строка складских остатков
type InventoryItem struct {
	ProductName string `json:"product_name"`
	SKU         string `json:"normalized_sku"`
	BaseName    string `json:"-"`
	// StockQuantity остаток; Valid=false, если в источнике значения нет
	StockQuantity decimal.NullDecimal `json:"stock_quantity"`
	SourceRow     int                 `json:"-"`
}

// StringPtr возвращает указатель на строку
func StringPtr(s string) *string {
	return &s
}
