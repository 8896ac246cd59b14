package handlers

import "retailsync/server/middleware"

// ListResponse страница результатов выборки
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  *int64      `json:"total,omitempty"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// HealthResponse состояние сервиса
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Driver   string `json:"driver"`
}

// StatsResponse сводка по содержимому базы результатов
type StatsResponse struct {
	Tables        map[string]int64 `json:"tables"`
	MatchedRows   int64            `json:"matched_rows"`
	UnmatchedRows int64            `json:"unmatched_rows"`
	UnmatchedSKUs int              `json:"unmatched_skus"`
}

// ErrorResponse ответ об ошибке (для документации API)
type ErrorResponse = middleware.ErrorResponse
