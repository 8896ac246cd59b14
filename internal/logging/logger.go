package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var (
	// Logger глобальный структурированный логгер
	Logger *slog.Logger

	level = new(slog.LevelVar)
)

type runIDKey struct{}

func init() {
	Logger = New(os.Stderr)
}

// New создает JSON логгер. Stdout зарезервирован для машиночитаемой сводки,
// поэтому по умолчанию логи пишутся в stderr.
func New(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel переводит LOG_LEVEL в уровень slog. Неизвестные значения дают INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel меняет уровень глобального логгера
func SetLevel(s string) {
	level.Set(ParseLevel(s))
}

// Setup настраивает глобальный логгер и делает его логгером slog по умолчанию
func Setup(w io.Writer, levelName string) *slog.Logger {
	SetLevel(levelName)
	Logger = New(w)
	slog.SetDefault(Logger)
	return Logger
}

// WithRunID сохраняет идентификатор запуска в контексте
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID возвращает идентификатор запуска из контекста
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext возвращает логгер с привязанным run_id
func FromContext(ctx context.Context) *slog.Logger {
	if id := RunID(ctx); id != "" {
		return Logger.With("run_id", id)
	}
	return Logger
}

// LogInfo логирует информационное сообщение
func LogInfo(ctx context.Context, msg string, attrs ...any) {
	FromContext(ctx).InfoContext(ctx, msg, attrs...)
}

// LogWarn логирует предупреждение
func LogWarn(ctx context.Context, msg string, attrs ...any) {
	FromContext(ctx).WarnContext(ctx, msg, attrs...)
}

// LogError логирует ошибку с контекстом запуска
func LogError(ctx context.Context, err error, msg string, attrs ...any) {
	attrs = append(attrs, "error", err)
	FromContext(ctx).ErrorContext(ctx, msg, attrs...)
}

// LogDuration логирует длительность этапа
func LogDuration(ctx context.Context, stage string, start time.Time, attrs ...any) {
	duration := time.Since(start)
	attrs = append(attrs,
		"stage", stage,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String(),
	)
	FromContext(ctx).InfoContext(ctx, "Stage completed", attrs...)
}
