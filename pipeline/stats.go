package pipeline

import (
	"log/slog"
	"sync/atomic"
)

// Stats счетчики конвейера, безопасны для чтения из других горутин
type Stats struct {
	submitted atomic.Int64
	written   atomic.Int64
	failed    atomic.Int64
}

// Submitted возвращает количество событий, поставленных в очередь
func (s *Stats) Submitted() int64 { return s.submitted.Load() }

// Written возвращает количество записей, принятых приемником
func (s *Stats) Written() int64 { return s.written.Load() }

// Failed возвращает количество ошибок записи
func (s *Stats) Failed() int64 { return s.failed.Load() }

// LogValue реализует slog.LogValuer
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("submitted", s.Submitted()),
		slog.Int64("written", s.Written()),
		slog.Int64("failed", s.Failed()),
	)
}

func (s *Stats) incSubmitted() int64 { return s.submitted.Add(1) }
func (s *Stats) incWritten() int64   { return s.written.Add(1) }
func (s *Stats) incFailed() int64    { return s.failed.Add(1) }
