package ingestion

import (
	"fmt"

	"retailsync/internal/domain/models"
)

// HighDiscardRateThreshold доля отброшенных строк источника, выше которой выдается предупреждение
const HighDiscardRateThreshold = 0.10

// buildAlerts собирает предупреждения о качестве данных по счетчикам сводки
func buildAlerts(s *models.RunSummary) []models.DataQualityAlert {
	var alerts []models.DataQualityAlert

	if rate := discardRate(s.Retail.DiscardedMissingIdentity, s.Retail.SourceRows); rate > HighDiscardRateThreshold {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypeHighDiscardRate,
			Severity: "warning",
			Message:  fmt.Sprintf("%.1f%% of retail rows discarded for missing order id or product", rate*100),
			Details: map[string]interface{}{
				"source":    "retail",
				"discarded": s.Retail.DiscardedMissingIdentity,
				"rows":      s.Retail.SourceRows,
			},
		})
	}
	if rate := discardRate(s.Warehouse.DiscardedMissingName, s.Warehouse.SourceRows); rate > HighDiscardRateThreshold {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypeHighDiscardRate,
			Severity: "warning",
			Message:  fmt.Sprintf("%.1f%% of warehouse rows discarded for missing product name", rate*100),
			Details: map[string]interface{}{
				"source":    "warehouse",
				"discarded": s.Warehouse.DiscardedMissingName,
				"rows":      s.Warehouse.SourceRows,
			},
		})
	}

	if empty := s.Retail.EmptySKURows + s.Warehouse.EmptySKURows; empty > 0 {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypeEmptySKU,
			Severity: "warning",
			Message:  fmt.Sprintf("%d rows normalized to an empty SKU", empty),
			Details: map[string]interface{}{
				"retail":    s.Retail.EmptySKURows,
				"warehouse": s.Warehouse.EmptySKURows,
			},
		})
	}

	if s.Retail.ListParseFallbacks > 0 {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypeListParseFallback,
			Severity: "warning",
			Message:  fmt.Sprintf("%d product fields looked like lists but were kept as literals", s.Retail.ListParseFallbacks),
		})
	}

	if s.Warehouse.StockNotNumeric > 0 {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypeNonNumericStock,
			Severity: "warning",
			Message:  fmt.Sprintf("%d stock values were not numeric and stored as missing", s.Warehouse.StockNotNumeric),
		})
	}

	if s.Pipeline.Failed > 0 {
		alerts = append(alerts, models.DataQualityAlert{
			Type:     models.AlertTypePipelineWriteError,
			Severity: "error",
			Message:  fmt.Sprintf("%d transaction rows failed to write", s.Pipeline.Failed),
			Details: map[string]interface{}{
				"written": s.Pipeline.Written,
				"durable": s.Pipeline.Durable,
			},
		})
	}

	return alerts
}

func discardRate(discarded, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(discarded) / float64(total)
}
