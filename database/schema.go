package database

import "fmt"

// schemaStatements возвращает DDL для пересоздания таблиц результата.
// Таблицы удаляются вместе с индексами, поэтому CREATE INDEX без IF NOT EXISTS.
// Уникальности по транзакциям нет: строки одного заказа с одинаковым SKU допустимы.
func schemaStatements(d Dialect) []string {
	return []string{
		`DROP TABLE IF EXISTS retail_transactions`,
		`DROP TABLE IF EXISTS warehouse_inventory`,
		`DROP TABLE IF EXISTS products`,

		fmt.Sprintf(`CREATE TABLE retail_transactions (
			order_id TEXT,
			order_date TEXT,
			product_name TEXT,
			normalized_sku %s,
			quantity INTEGER,
			city TEXT,
			store_type TEXT,
			online_flag TEXT,
			warehouse_match TEXT
		)`, d.SKUType),

		fmt.Sprintf(`CREATE TABLE warehouse_inventory (
			product_name TEXT,
			normalized_sku %s,
			stock_quantity %s
		)`, d.SKUType, d.StockType),

		fmt.Sprintf(`CREATE TABLE products (
			normalized_sku %s PRIMARY KEY,
			base_product_name TEXT
		)`, d.SKUType),

		`CREATE INDEX idx_retail_sku ON retail_transactions(normalized_sku)`,
		`CREATE INDEX idx_warehouse_sku ON warehouse_inventory(normalized_sku)`,
	}
}

const insertTransactionSQL = `
	INSERT INTO retail_transactions
		(order_id, order_date, product_name, normalized_sku, quantity, city, store_type, online_flag, warehouse_match)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertInventorySQL = `
	INSERT INTO warehouse_inventory (product_name, normalized_sku, stock_quantity)
	VALUES (?, ?, ?)`

const insertProductSQL = `
	INSERT INTO products (normalized_sku, base_product_name)
	VALUES (?, ?)`
