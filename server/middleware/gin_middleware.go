package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	apperrors "retailsync/server/errors"
)

// GinGzipMiddleware сжимает ответы; swagger отдается без сжатия
func GinGzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPathsRegexs([]string{"^/swagger/"}))
}

// GinLoggerMiddleware пишет одну запись на запрос: 5xx как ERROR, 4xx как WARN
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		log := RequestLogger(c).With(
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		)

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP request")
		case status >= http.StatusBadRequest:
			log.Warn("HTTP request")
		default:
			log.Info("HTTP request")
		}
	}
}

// GinRecoveryMiddleware превращает панику обработчика в ответ 500
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				RequestLogger(c).Error("Panic recovered", "stack", string(debug.Stack()))
				HandleError(c, apperrors.Internal("panic", fmt.Errorf("%v", rec)))
			}
		}()

		c.Next()
	}
}
