package importer

import "strings"

// naMarkers строковые маркеры отсутствующего значения в выгрузках.
// Набор совпадает с маркерами по умолчанию, которые распознают табличные
// инструменты аналитиков, готовящих эти файлы.
var naMarkers = map[string]struct{}{
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingValue проверяет, считается ли ячейка отсутствующим значением.
// Пустая строка и строка из одних пробелов также считаются отсутствующими.
func IsMissingValue(value string) bool {
	if _, ok := naMarkers[value]; ok {
		return true
	}
	return strings.TrimSpace(value) == ""
}

// cell возвращает значение ячейки и признак его наличия
func cell(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	value := row[idx]
	if IsMissingValue(value) {
		return "", false
	}
	return value, true
}

// optionalCell возвращает указатель на значение или nil, если его нет
func optionalCell(row []string, idx int) *string {
	value, ok := cell(row, idx)
	if !ok {
		return nil
	}
	return &value
}
