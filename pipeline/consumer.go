package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"retailsync/internal/domain/models"
)

var (
	// ErrSinkUnavailable хранилище непригодно для записи; consumer останавливается
	ErrSinkUnavailable = errors.New("sink is unavailable")

	// ErrAlreadyStarted конвейер уже запущен
	ErrAlreadyStarted = errors.New("pipeline already started")
)

// Sink приемник записей. Вызывается только из горутины consumer.
type Sink interface {
	WriteTransaction(ctx context.Context, rec models.RetailTransaction) error
	Flush(ctx context.Context) error
}

// DurableSink приемник, который знает число зафиксированных записей
type DurableSink interface {
	Sink
	Committed() int64
}

// ConsumerState состояние consumer
type ConsumerState int32

const (
	StateStarted ConsumerState = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s ConsumerState) String() string {
	switch s {
	case StateStarted:
		return "STARTED"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("ConsumerState(%d)", int32(s))
}

// Consumer единственный писатель в приемник
type Consumer struct {
	queue     *Queue
	sink      Sink
	stats     *Stats
	logger    *slog.Logger
	state     atomic.Int32
	completed atomic.Bool
}

// NewConsumer создает consumer в состоянии STARTED
func NewConsumer(queue *Queue, sink Sink, stats *Stats, logger *slog.Logger) *Consumer {
	if stats == nil {
		stats = &Stats{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{queue: queue, sink: sink, stats: stats, logger: logger}
}

// State возвращает текущее состояние
func (c *Consumer) State() ConsumerState {
	return ConsumerState(c.state.Load())
}

// Completed сообщает, что ShutdownEvent получен и буфер приемника сброшен
func (c *Consumer) Completed() bool {
	return c.completed.Load()
}

// advance переводит состояние только вперед
func (c *Consumer) advance(next ConsumerState) {
	for {
		cur := c.state.Load()
		if cur >= int32(next) {
			return
		}
		if c.state.CompareAndSwap(cur, int32(next)) {
			c.logger.Debug("Consumer state changed", "from", ConsumerState(cur).String(), "to", next.String())
			return
		}
	}
}

// Run обрабатывает очередь до ShutdownEvent, отмены контекста или отказа приемника.
// Ошибка записи отдельной строки учитывается и не останавливает обработку.
func (c *Consumer) Run(ctx context.Context) error {
	c.advance(StateRunning)
	defer c.advance(StateStopped)

	for {
		ev, err := c.queue.Get(ctx)
		if err != nil {
			return fmt.Errorf("consumer interrupted: %w", err)
		}

		switch e := ev.(type) {
		case DataEvent:
			if err := c.sink.WriteTransaction(ctx, e.Record); err != nil {
				c.stats.incFailed()
				if errors.Is(err, ErrSinkUnavailable) {
					c.logger.Error("Sink unavailable, stopping consumer", "seq", e.Seq, "error", err)
					return err
				}
				c.logger.Warn("Failed to write transaction",
					"seq", e.Seq,
					"order_id", e.Record.OrderID,
					"sku", e.Record.SKU,
					"error", err)
				continue
			}
			c.stats.incWritten()

		case ShutdownEvent:
			c.advance(StateDraining)
			if err := c.sink.Flush(ctx); err != nil {
				c.logger.Error("Failed to flush sink", "error", err)
				return fmt.Errorf("failed to flush sink: %w", err)
			}
			c.completed.Store(true)
			return nil

		default:
			return fmt.Errorf("unexpected event type %T", ev)
		}
	}
}
