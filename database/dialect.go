package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Поддерживаемые драйверы
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Dialect различия SQL между поддерживаемыми СУБД
type Dialect struct {
	Driver string
	// SKUType тип колонки normalized_sku (MySQL не индексирует TEXT без длины)
	SKUType string
	// StockType тип колонки stock_quantity
	StockType string
}

// DialectFor возвращает диалект для драйвера
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case DriverSQLite, "":
		return Dialect{Driver: DriverSQLite, SKUType: "TEXT", StockType: "NUMERIC"}, nil
	case DriverPostgres:
		return Dialect{Driver: DriverPostgres, SKUType: "TEXT", StockType: "NUMERIC"}, nil
	case DriverMySQL:
		return Dialect{Driver: DriverMySQL, SKUType: "VARCHAR(255)", StockType: "DECIMAL(18,4)"}, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver: %s", driverName)
}

// Rebind переписывает плейсхолдеры "?" в формат драйвера ($1, $2 для PostgreSQL)
func (d Dialect) Rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// ListTablesQuery запрос списка пользовательских таблиц
func (d Dialect) ListTablesQuery() string {
	switch d.Driver {
	case DriverPostgres:
		return `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
			ORDER BY table_name`
	case DriverMySQL:
		return `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
			ORDER BY table_name`
	default:
		return `SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	}
}

// InsertionOrder сортировка в порядке вставки, если СУБД ее поддерживает.
// У таблиц результата нет суррогатного ключа, для SQLite используется rowid.
func (d Dialect) InsertionOrder() string {
	if d.Driver == DriverSQLite {
		return " ORDER BY rowid"
	}
	return ""
}

// AbortsTxOnError сообщает, что любая ошибка запроса прерывает всю транзакцию (PostgreSQL)
func (d Dialect) AbortsTxOnError() bool {
	return d.Driver == DriverPostgres
}

// QuoteIdent экранирует имя таблицы или колонки
func (d Dialect) QuoteIdent(name string) string {
	if d.Driver == DriverMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// IsConnectionFailure определяет ошибки, после которых хранилище непригодно для записи:
// потеря соединения, прерванная транзакция, поврежденный или read-only файл.
// Остальные ошибки относятся к конкретной записи.
func (d Dialect) IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08 - connection exception, 25P02 - транзакция уже прервана, 57P01 - admin shutdown
		return pqErr.Code.Class() == "08" || pqErr.Code == "25P02" || pqErr.Code == "57P01"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 2006 server has gone away, 2013 lost connection, 1205 lock wait timeout
		return myErr.Number == 2006 || myErr.Number == 2013 || myErr.Number == 1205
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrCorrupt, sqlite3.ErrNotADB,
			sqlite3.ErrIoErr, sqlite3.ErrReadonly, sqlite3.ErrFull:
			return true
		}
	}
	return false
}
