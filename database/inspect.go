package database

import (
	"context"
	"fmt"
)

// TableReport результат проверки одной таблицы
type TableReport struct {
	Table  string                 `json:"table"`
	Exists bool                   `json:"exists"`
	Rows   int64                  `json:"rows"`
	Sample map[string]interface{} `json:"sample,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// TablePreview первые строки таблицы
type TablePreview struct {
	Table   string          `json:"table"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Verify проверяет таблицы результата: количество строк и одна строка-образец.
// Ошибка по одной таблице не прерывает проверку остальных.
func (s *Store) Verify(ctx context.Context) ([]TableReport, error) {
	existing, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(existing))
	for _, t := range existing {
		present[t] = true
	}

	reports := make([]TableReport, 0, len(ResultTables))
	for _, table := range ResultTables {
		report := TableReport{Table: table, Exists: present[table]}
		if !report.Exists {
			reports = append(reports, report)
			continue
		}

		query := "SELECT COUNT(*) FROM " + s.dialect.QuoteIdent(table)
		if err := s.conn.QueryRowContext(ctx, query).Scan(&report.Rows); err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			continue
		}

		preview, err := s.previewTable(ctx, table, 1)
		if err != nil {
			report.Error = err.Error()
		} else if len(preview.Rows) > 0 {
			report.Sample = make(map[string]interface{}, len(preview.Columns))
			for i, col := range preview.Columns {
				report.Sample[col] = preview.Rows[0][i]
			}
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// Preview возвращает список всех таблиц с первыми limit строками каждой
func (s *Store) Preview(ctx context.Context, limit int) ([]TablePreview, error) {
	if limit <= 0 {
		limit = 10
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]TablePreview, 0, len(tables))
	for _, table := range tables {
		preview, err := s.previewTable(ctx, table, limit)
		if err != nil {
			return nil, err
		}
		previews = append(previews, *preview)
	}
	return previews, nil
}

// ListTables возвращает имена пользовательских таблиц
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, s.dialect.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

func (s *Store) previewTable(ctx context.Context, table string, limit int) (*TablePreview, error) {
	query := s.dialect.Rebind(fmt.Sprintf("SELECT * FROM %s LIMIT ?", s.dialect.QuoteIdent(table)))
	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to preview %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", table, err)
	}

	preview := &TablePreview{Table: table, Columns: columns, Rows: make([][]interface{}, 0, limit)}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		preview.Rows = append(preview.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return preview, nil
}
