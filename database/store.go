package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"retailsync/internal/domain/models"
)

// Имена таблиц результата загрузки
const (
	TableRetailTransactions = "retail_transactions"
	TableWarehouseInventory = "warehouse_inventory"
	TableProducts           = "products"
)

// ResultTables таблицы, которые пересоздаются при каждом запуске
var ResultTables = []string{TableRetailTransactions, TableWarehouseInventory, TableProducts}

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// DBConfig конфигурация подключения к базе данных
type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store хранилище результатов сверки
type Store struct {
	conn    *sql.DB
	dialect Dialect
	dsn     string
}

// Open открывает подключение к базе данных
func Open(config DBConfig) (*Store, error) {
	dialect, err := DialectFor(config.Driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(dialect.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка connection pooling
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(5)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	// Каждое соединение к :memory: открывает отдельную базу
	if dialect.Driver == DriverSQLite && strings.Contains(config.DSN, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect.Driver == DriverSQLite {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("Warning: failed to enable WAL journal mode: %v", err)
		}
		if _, err := conn.Exec("PRAGMA encoding = 'UTF-8'"); err != nil {
			log.Printf("Warning: failed to set UTF-8 encoding: %v", err)
		}
	}

	return &Store{conn: conn, dialect: dialect, dsn: config.DSN}, nil
}

// Exists проверяет наличие файла базы SQLite.
// Для серверных СУБД всегда возвращает true, наличие проверит подключение.
func Exists(config DBConfig) bool {
	if config.Driver != "" && config.Driver != DriverSQLite {
		return true
	}
	path := strings.TrimPrefix(config.DSN, "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Close закрывает подключение
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping проверяет доступность базы данных
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// GetDB возвращает указатель на sql.DB для прямого доступа
func (s *Store) GetDB() *sql.DB {
	return s.conn
}

// Dialect возвращает диалект SQL хранилища
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Driver возвращает имя драйвера
func (s *Store) Driver() string {
	return s.dialect.Driver
}

// ResetSchema удаляет и заново создает таблицы результата с индексами
func (s *Store) ResetSchema(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements(s.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}

	log.Printf("Schema recreated: %s", strings.Join(ResultTables, ", "))
	return nil
}

// InsertInventory записывает складские позиции одной транзакцией
func (s *Store) InsertInventory(ctx context.Context, items []models.InventoryItem) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(insertInventorySQL))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ProductName, item.SKU, item.StockQuantity); err != nil {
			return fmt.Errorf("failed to insert inventory row %d (%s): %w", item.SourceRow, item.ProductName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Inserted %d warehouse inventory rows", len(items))
	return nil
}

// InsertProducts записывает каталог товаров одной транзакцией
func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(insertProductSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.SKU, p.DisplayName); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Inserted %d catalog products", len(products))
	return nil
}

// TableCounts возвращает количество строк в таблицах результата
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(ResultTables))
	for _, table := range ResultTables {
		var n int64
		query := "SELECT COUNT(*) FROM " + s.dialect.QuoteIdent(table)
		if err := s.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if idx := strings.IndexByte(stmt, '\n'); idx >= 0 {
		return stmt[:idx]
	}
	return stmt
}
