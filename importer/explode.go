package importer

import (
	"retailsync/internal/domain/models"
)

// ExplodeStats счетчики этапа разворачивания
type ExplodeStats struct {
	// ListParseFallbacks поля, похожие на список, но разобранные как одно название
	ListParseFallbacks int `json:"list_parse_fallbacks"`
	// DroppedEmptyNames элементы, отброшенные из-за пустого названия
	// (включая поля с пустым списком)
	DroppedEmptyNames int `json:"dropped_empty_names"`
}

// ExplodeRetail разворачивает каждую строку в одну запись на товар.
// Порядок строк и порядок товаров внутри строки сохраняются,
// остальные поля копируются без изменений.
// Example: Product="['Onions', 'Egg (Turkey)']" -> две записи "Onions" и "Egg (Turkey)"
func ExplodeRetail(rows []RetailRow) ([]models.RetailTransaction, ExplodeStats) {
	var stats ExplodeStats
	out := make([]models.RetailTransaction, 0, len(rows))

	for _, row := range rows {
		var names []string
		switch field := ParseProductField(row.ProductField).(type) {
		case ParsedList:
			names = field.Items
			stats.DroppedEmptyNames += field.Blank
			if len(names) == 0 && field.Blank == 0 {
				stats.DroppedEmptyNames++
			}
		case SingleLiteral:
			if field.Fallback {
				stats.ListParseFallbacks++
			}
			if field.Value == "" {
				stats.DroppedEmptyNames++
				continue
			}
			names = []string{field.Value}
		}

		for _, name := range names {
			out = append(out, models.RetailTransaction{
				OrderID:     row.OrderID,
				OrderDate:   row.OrderDate,
				ProductName: name,
				Quantity:    row.Quantity,
				City:        row.City,
				StoreType:   row.StoreType,
				OnlineFlag:  row.OnlineFlag,
				SourceRow:   row.SourceRow,
			})
		}
	}

	return out, stats
}
