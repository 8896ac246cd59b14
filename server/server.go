package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"retailsync/internal/logging"
	apperrors "retailsync/server/errors"
	"retailsync/server/handlers"
	"retailsync/server/middleware"
)

// Config параметры HTTP сервера
type Config struct {
	Port string
}

// Server HTTP API для чтения результатов сверки
type Server struct {
	config     Config
	store      handlers.QueryStore
	httpServer *http.Server

	handlerOnce sync.Once
	httpHandler http.Handler
}

// NewServer создает сервер поверх хранилища результатов
func NewServer(config Config, store handlers.QueryStore) *Server {
	if config.Port == "" {
		config.Port = "9999"
	}
	s := &Server{config: config, store: store}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Port),
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler возвращает собранный Gin роутер
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildRouter()
	})
	return s.httpHandler
}

// ServeHTTP реализует http.Handler для тестов
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

func (s *Server) buildRouter() *gin.Engine {
	// GIN_MODE переопределяет режим, по умолчанию release
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())

	handlers.RegisterSwaggerRoutes(router, "localhost:"+s.config.Port)
	handlers.RegisterRoutes(router, handlers.NewQueryHandler(s.store))
	router.NoRoute(func(c *gin.Context) {
		middleware.HandleError(c, apperrors.NotFound("Route", c.Request.URL.Path, nil))
	})

	return router
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	logging.Logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер gracefully.
// После Shutdown повторный Start сразу возвращает nil.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger.Info("Initiating graceful shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	logging.Logger.Info("Graceful shutdown completed")
	return nil
}
