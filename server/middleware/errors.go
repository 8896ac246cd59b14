package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "retailsync/server/errors"
)

var errorMetrics = apperrors.NewErrorMetricsCollector()

// GetErrorMetrics возвращает общий для сервера сборщик метрик ошибок
func GetErrorMetrics() *apperrors.ErrorMetricsCollector {
	return errorMetrics
}

// ErrorResponse тело ответа об ошибке
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      apperrors.Kind `json:"code"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
}

// HandleError завершает запрос JSON ошибкой, учитывает ее в метриках и логе.
// Ошибки не из server/errors отдаются как 500 без деталей.
func HandleError(c *gin.Context, err error) {
	apiErr := apperrors.As(err)
	reqID := GetRequestIDFromGin(c)
	errorMetrics.RecordError(apiErr, routeOf(c), reqID)

	log := RequestLogger(c).With(
		"kind", string(apiErr.Kind),
		"status", apiErr.Status,
	)
	if apiErr.Op != "" {
		log = log.With("op", apiErr.Op)
	}
	if fields := apiErr.LogFields(); fields != "" {
		log = log.With("fields", fields)
	}
	if apiErr.Err != nil {
		log = log.With("error", apiErr.Err.Error())
	}
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error(apiErr.Message)
	} else {
		log.Warn(apiErr.Message)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, ErrorResponse{
		Error:     apiErr.Message,
		Code:      apiErr.Kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: reqID,
	})
}
