package models

import (
	"time"
)

// RunStatus итоговый статус запуска загрузки
type RunStatus string

const (
	RunStatusSuccess    RunStatus = "SUCCESS"
	RunStatusIncomplete RunStatus = "INCOMPLETE"
	RunStatusFailed     RunStatus = "FAILED"
)

// RunSummary сводка по запуску загрузки, печатается в stdout в формате JSON
type RunSummary struct {
	Status              RunStatus          `json:"status"`
	RunID               string             `json:"run_id"`
	StartedAt           time.Time          `json:"started_at"`
	Duration            string             `json:"duration"`
	Retail              RetailSummary      `json:"retail"`
	Warehouse           WarehouseSummary   `json:"warehouse"`
	Matching            MatchingSummary    `json:"matching"`
	ProductsCatalogSize int                `json:"products_catalog_size"`
	Pipeline            PipelineSummary    `json:"pipeline"`
	Tables              map[string]int64   `json:"tables,omitempty"`
	StemCollisions      []StemCollision    `json:"stem_collisions,omitempty"`
	Database            string             `json:"database"`
	Alerts              []DataQualityAlert `json:"alerts,omitempty"`
	Error               string             `json:"error,omitempty"`
}

// RetailSummary счетчики по розничному источнику
type RetailSummary struct {
	SourceRows               int `json:"source_rows"`
	DiscardedMissingIdentity int `json:"discarded_missing_identity"` // нет order_id или товара
	QuantityDefaulted        int `json:"quantity_defaulted"`
	ListParseFallbacks       int `json:"list_parse_fallbacks"`
	DroppedEmptyNames        int `json:"dropped_empty_names"`
	TotalExplodedRows        int `json:"total_exploded_rows"`
	UniqueProducts           int `json:"unique_products"`
	UniqueSKUs               int `json:"unique_skus"`
	EmptySKURows             int `json:"empty_sku_rows"`
}

// WarehouseSummary счетчики по складскому источнику
type WarehouseSummary struct {
	SourceRows           int `json:"source_rows"`
	DiscardedMissingName int `json:"discarded_missing_name"`
	StockMissing         int `json:"stock_missing"`
	StockNotNumeric      int `json:"stock_not_numeric"`
	TotalRows            int `json:"total_rows"`
	UniqueProducts       int `json:"unique_products"`
	UniqueSKUs           int `json:"unique_skus"`
	EmptySKURows         int `json:"empty_sku_rows"`
}

// MatchingSummary результат сопоставления розницы со складом
type MatchingSummary struct {
	MatchedRows   int      `json:"matched_rows"`
	UnmatchedRows int      `json:"unmatched_rows"`
	MatchedSKUs   int      `json:"matched_skus"`
	UnmatchedSKUs int      `json:"unmatched_skus"`
	UnmatchedList []string `json:"unmatched_list"`
}

// PipelineSummary состояние конвейера записи транзакций
type PipelineSummary struct {
	Submitted      int64  `json:"submitted"`
	Written        int64  `json:"written"`
	Durable        int64  `json:"durable"`
	Failed         int64  `json:"failed"`
	QueueHighWater int    `json:"queue_high_water"`
	State          string `json:"consumer_state"`
	Completed      bool   `json:"completed"`
}

// StemCollision группа SKU каталога с общей основой слов.
// Подсказка для пополнения таблицы замен, на идентичность не влияет.
type StemCollision struct {
	StemKey string   `json:"stem_key"`
	SKUs    []string `json:"skus"`
}

// DataQualityAlertType тип предупреждения о качестве данных
type DataQualityAlertType string

const (
	AlertTypeEmptySKU           DataQualityAlertType = "empty_sku"
	AlertTypeHighDiscardRate    DataQualityAlertType = "high_discard_rate"
	AlertTypeListParseFallback  DataQualityAlertType = "list_parse_fallback"
	AlertTypeNonNumericStock    DataQualityAlertType = "non_numeric_stock"
	AlertTypePipelineWriteError DataQualityAlertType = "pipeline_write_error"
)

// DataQualityAlert предупреждение о качестве данных
type DataQualityAlert struct {
	Type     DataQualityAlertType   `json:"type"`
	Severity string                 `json:"severity"` // "warning", "error"
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
}
