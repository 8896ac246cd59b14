package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReaderConfig параметры чтения табличного источника
type ReaderConfig struct {
	Delimiter rune   // разделитель CSV (по умолчанию запятая)
	Encoding  string // "auto" или имя кодировки WHATWG ("utf-8", "windows-1252", "windows-1251", ...)
	Sheet     string // лист XLSX; пусто = первый лист
}

// DefaultReaderConfig возвращает конфигурацию по умолчанию
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Delimiter: ',',
		Encoding:  "auto",
	}
}

// Table прочитанная таблица: заголовок и строки данных
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string
	columns map[string]int
}

// NewTable создает таблицу и строит индекс колонок.
// При повторяющихся заголовках используется первая колонка.
func NewTable(source string, headers []string, rows [][]string) *Table {
	t := &Table{
		Source:  source,
		Headers: headers,
		Rows:    rows,
		columns: make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		name := strings.TrimSpace(h)
		t.Headers[i] = name
		if _, exists := t.columns[name]; !exists {
			t.columns[name] = i
		}
	}
	return t
}

// ColumnIndex возвращает индекс колонки или -1
func (t *Table) ColumnIndex(name string) int {
	if idx, ok := t.columns[name]; ok {
		return idx
	}
	return -1
}

// ReadTable читает CSV или XLSX файл в зависимости от расширения
func ReadTable(path string, config ReaderConfig) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcel(path, config)
	default:
		return readCSVFile(path, config)
	}
}

func readCSVFile(path string, config ReaderConfig) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrSourceUnreadable, path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrSourceUnreadable, path, err)
	}

	return ParseCSVData(path, data, config)
}

// ParseCSVData разбирает CSV из памяти
func ParseCSVData(source string, data []byte, config ReaderConfig) (*Table, error) {
	decoded, err := decodeSource(data, config.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, source, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	if config.Delimiter != 0 {
		reader.Comma = config.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // строки разной длины допускаются, недостающие ячейки = пусто

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV %s: %v", ErrSourceUnreadable, source, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrSourceUnreadable, source)
	}

	return NewTable(source, records[0], records[1:]), nil
}

func readExcel(path string, config ReaderConfig) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file %s: %v", ErrSourceUnreadable, path, err)
	}
	defer f.Close()

	sheetName := config.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no sheets found in %s", ErrSourceUnreadable, path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rows from %s: %v", ErrSourceUnreadable, path, err)
	}

	// Пустые строки листа пропускаем так же, как пустые строки CSV
	nonEmpty := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !isEmptyRow(row) {
			nonEmpty = append(nonEmpty, row)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrSourceUnreadable, path)
	}

	return NewTable(path, nonEmpty[0], nonEmpty[1:]), nil
}

// decodeSource приводит данные к UTF-8.
// В режиме auto снимается BOM (UTF-8/UTF-16), а невалидный UTF-8
// декодируется как Windows-1252.
func decodeSource(data []byte, encodingName string) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(encodingName))

	if name == "" || name == "auto" {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		if err == nil && utf8.Valid(decoded) {
			return decoded, nil
		}
		decoded, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode as windows-1252: %w", err)
		}
		return decoded, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported source encoding %q: %w", encodingName, err)
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode as %s: %w", name, err)
	}
	return decoded, nil
}

// isEmptyRow проверяет, что все ячейки строки пустые
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
