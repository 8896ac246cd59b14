package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"retailsync/internal/domain/models"
)

// TransactionFilter параметры выборки транзакций
type TransactionFilter struct {
	SKU     string
	OrderID string
	Matched *bool
	Limit   int
	Offset  int
}

// UnmatchedSKU розничный SKU без складской позиции
type UnmatchedSKU struct {
	SKU      string `json:"normalized_sku"`
	Rows     int64  `json:"rows"`
	Quantity int64  `json:"quantity"`
}

// MatchCounts количество строк транзакций по признаку совпадения
type MatchCounts struct {
	Matched   int64 `json:"matched_rows"`
	Unmatched int64 `json:"unmatched_rows"`
}

// NormalizePage приводит параметры страницы к допустимым: limit 1..1000 (по умолчанию 100), offset >= 0
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListProducts возвращает страницу каталога и общее количество товаров
func (s *Store) ListProducts(ctx context.Context, search string, limit, offset int) ([]models.Product, int64, error) {
	limit, offset = NormalizePage(limit, offset)

	where := ""
	var args []interface{}
	if search != "" {
		where = " WHERE normalized_sku LIKE ? OR base_product_name LIKE ?"
		pattern := "%" + strings.ToUpper(search) + "%"
		args = append(args, pattern, pattern)
	}

	var total int64
	countQuery := s.dialect.Rebind("SELECT COUNT(*) FROM products" + where)
	if err := s.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := s.dialect.Rebind("SELECT normalized_sku, base_product_name FROM products" + where +
		" ORDER BY normalized_sku LIMIT ? OFFSET ?")
	rows, err := s.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0, limit)
	for rows.Next() {
		var p models.Product
		var name sql.NullString
		if err := rows.Scan(&p.SKU, &name); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		p.DisplayName = name.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// GetProduct возвращает товар по SKU
func (s *Store) GetProduct(ctx context.Context, sku string) (*models.Product, error) {
	query := s.dialect.Rebind("SELECT normalized_sku, base_product_name FROM products WHERE normalized_sku = ?")

	var p models.Product
	var name sql.NullString
	err := s.conn.QueryRowContext(ctx, query, sku).Scan(&p.SKU, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", sku, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p.DisplayName = name.String
	return &p, nil
}

// ListTransactions возвращает транзакции в порядке записи
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.RetailTransaction, error) {
	limit, offset := NormalizePage(filter.Limit, filter.Offset)

	var conditions []string
	var args []interface{}
	if filter.SKU != "" {
		conditions = append(conditions, "normalized_sku = ?")
		args = append(args, filter.SKU)
	}
	if filter.OrderID != "" {
		conditions = append(conditions, "order_id = ?")
		args = append(args, filter.OrderID)
	}
	if filter.Matched != nil {
		conditions = append(conditions, "warehouse_match = ?")
		if *filter.Matched {
			args = append(args, "TRUE")
		} else {
			args = append(args, "FALSE")
		}
	}

	query := `SELECT order_id, order_date, product_name, normalized_sku, quantity,
		city, store_type, online_flag, warehouse_match FROM retail_transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += s.dialect.InsertionOrder() + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.conn.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	result := make([]models.RetailTransaction, 0, limit)
	for rows.Next() {
		var rec models.RetailTransaction
		var orderDate, city, storeType, onlineFlag sql.NullString
		var match string
		if err := rows.Scan(&rec.OrderID, &orderDate, &rec.ProductName, &rec.SKU, &rec.Quantity,
			&city, &storeType, &onlineFlag, &match); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		rec.OrderDate = nullStringPtr(orderDate)
		rec.City = nullStringPtr(city)
		rec.StoreType = nullStringPtr(storeType)
		rec.OnlineFlag = nullStringPtr(onlineFlag)
		rec.WarehouseMatch = match == "TRUE"
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// ListInventory возвращает складские позиции, при необходимости по SKU
func (s *Store) ListInventory(ctx context.Context, sku string, limit, offset int) ([]models.InventoryItem, error) {
	limit, offset = NormalizePage(limit, offset)

	query := "SELECT product_name, normalized_sku, stock_quantity FROM warehouse_inventory"
	var args []interface{}
	if sku != "" {
		query += " WHERE normalized_sku = ?"
		args = append(args, sku)
	}
	query += s.dialect.InsertionOrder() + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.conn.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0, limit)
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ProductName, &item.SKU, &item.StockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return items, nil
}

// UnmatchedSKUs возвращает розничные SKU, которых нет на складе
func (s *Store) UnmatchedSKUs(ctx context.Context) ([]UnmatchedSKU, error) {
	query := s.dialect.Rebind(`
		SELECT normalized_sku, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM retail_transactions
		WHERE warehouse_match = ? AND normalized_sku <> ''
		GROUP BY normalized_sku
		ORDER BY normalized_sku`)

	rows, err := s.conn.QueryContext(ctx, query, "FALSE")
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched SKUs: %w", err)
	}
	defer rows.Close()

	result := make([]UnmatchedSKU, 0)
	for rows.Next() {
		var u UnmatchedSKU
		if err := rows.Scan(&u.SKU, &u.Rows, &u.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched SKU: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unmatched SKUs: %w", err)
	}

	return result, nil
}

// CountMatches считает совпавшие и несовпавшие строки транзакций
func (s *Store) CountMatches(ctx context.Context) (MatchCounts, error) {
	var counts MatchCounts
	query := s.dialect.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN warehouse_match = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN warehouse_match = ? THEN 0 ELSE 1 END), 0)
		FROM retail_transactions`)

	if err := s.conn.QueryRowContext(ctx, query, "TRUE", "TRUE").Scan(&counts.Matched, &counts.Unmatched); err != nil {
		return counts, fmt.Errorf("failed to count matches: %w", err)
	}
	return counts, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
