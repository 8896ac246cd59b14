package errors

import (
	"sync"
	"time"
)

// ErrorMetricsCollector собирает статистику ошибок API запросов к результатам сверки
type ErrorMetricsCollector struct {
	mu sync.RWMutex

	totalErrors      int64
	errorsByKind     map[Kind]int64
	errorsByStatus   map[int]int64
	errorsByEndpoint map[string]int64

	lastErrors    []ErrorRecord
	maxLastErrors int

	startTime time.Time
}

// ErrorRecord запись об ошибке
type ErrorRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        Kind      `json:"kind"`
	Status      int       `json:"status"`
	Endpoint    string    `json:"endpoint"`
	RequestID   string    `json:"request_id,omitempty"`
	UserMessage string    `json:"user_message"`
}

// ErrorMetrics снимок статистики ошибок
type ErrorMetrics struct {
	TotalErrors      int64            `json:"total_errors"`
	ErrorsByKind     map[Kind]int64   `json:"errors_by_kind"`
	ErrorsByStatus   map[int]int64    `json:"errors_by_status"`
	ErrorsByEndpoint map[string]int64 `json:"errors_by_endpoint"`
	LastErrors       []ErrorRecord    `json:"last_errors"`
	UptimeSeconds    float64          `json:"uptime_seconds"`
}

// NewErrorMetricsCollector создает новый сборщик метрик ошибок
func NewErrorMetricsCollector() *ErrorMetricsCollector {
	return &ErrorMetricsCollector{
		errorsByKind:     make(map[Kind]int64),
		errorsByStatus:   make(map[int]int64),
		errorsByEndpoint: make(map[string]int64),
		maxLastErrors:    100,
		startTime:        time.Now(),
	}
}

// RecordError записывает ошибку в метрики
func (emc *ErrorMetricsCollector) RecordError(err *APIError, endpoint, requestID string) {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors++
	emc.errorsByKind[err.Kind]++
	emc.errorsByStatus[err.Status]++
	if endpoint != "" {
		emc.errorsByEndpoint[endpoint]++
	}

	// Последние ошибки хранятся от новых к старым
	record := ErrorRecord{
		Timestamp:   time.Now(),
		Kind:        err.Kind,
		Status:      err.Status,
		Endpoint:    endpoint,
		RequestID:   requestID,
		UserMessage: err.Message,
	}
	emc.lastErrors = append([]ErrorRecord{record}, emc.lastErrors...)
	if len(emc.lastErrors) > emc.maxLastErrors {
		emc.lastErrors = emc.lastErrors[:emc.maxLastErrors]
	}
}

// GetMetrics возвращает копию накопленных метрик
func (emc *ErrorMetricsCollector) GetMetrics() ErrorMetrics {
	emc.mu.RLock()
	defer emc.mu.RUnlock()

	m := ErrorMetrics{
		TotalErrors:      emc.totalErrors,
		ErrorsByKind:     make(map[Kind]int64, len(emc.errorsByKind)),
		ErrorsByStatus:   make(map[int]int64, len(emc.errorsByStatus)),
		ErrorsByEndpoint: make(map[string]int64, len(emc.errorsByEndpoint)),
		LastErrors:       make([]ErrorRecord, len(emc.lastErrors)),
		UptimeSeconds:    time.Since(emc.startTime).Seconds(),
	}
	for k, v := range emc.errorsByKind {
		m.ErrorsByKind[k] = v
	}
	for k, v := range emc.errorsByStatus {
		m.ErrorsByStatus[k] = v
	}
	for k, v := range emc.errorsByEndpoint {
		m.ErrorsByEndpoint[k] = v
	}
	copy(m.LastErrors, emc.lastErrors)
	return m
}
