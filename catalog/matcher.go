package catalog

import (
	"retailsync/internal/domain/models"
)

// MatchReport итоги сопоставления розницы со складом
type MatchReport struct {
	MatchedRows   int
	UnmatchedRows int
	MatchedSKUs   int
	UnmatchedSKUs int
	// UnmatchedList розничные SKU, которых нет на складе, по возрастанию
	UnmatchedList []string
}

// Match проставляет признак наличия SKU на складе.
// Возвращает новый срез той же длины и в том же порядке, входной срез не меняется.
func Match(records []models.RetailTransaction, warehouseSKUs SKUSet) []models.RetailTransaction {
	out := make([]models.RetailTransaction, len(records))
	for i, rec := range records {
		rec.WarehouseMatch = warehouseSKUs.Contains(rec.SKU)
		out[i] = rec
	}
	return out
}

// Summarize считает совпавшие и несовпавшие строки и SKU.
// Пустой SKU учитывается как несовпавшая строка, но не попадает в список SKU.
func Summarize(records []models.RetailTransaction, warehouseSKUs SKUSet) MatchReport {
	var report MatchReport
	matched := make(SKUSet)
	unmatched := make(SKUSet)

	for _, rec := range records {
		if warehouseSKUs.Contains(rec.SKU) {
			report.MatchedRows++
			matched.Add(rec.SKU)
			continue
		}
		report.UnmatchedRows++
		if rec.SKU != "" {
			unmatched.Add(rec.SKU)
		}
	}

	report.MatchedSKUs = len(matched)
	report.UnmatchedSKUs = len(unmatched)
	report.UnmatchedList = unmatched.Sorted()
	return report
}
