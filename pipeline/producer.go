package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"retailsync/internal/domain/models"
)

// Producer ставит записи в очередь в исходном порядке и завершает поток ShutdownEvent
type Producer struct {
	queue   *Queue
	limiter *rate.Limiter
	stats   *Stats
}

// NewProducer создает producer. limiter == nil отключает паузы между событиями.
func NewProducer(queue *Queue, limiter *rate.Limiter, stats *Stats) *Producer {
	if stats == nil {
		stats = &Stats{}
	}
	return &Producer{queue: queue, limiter: limiter, stats: stats}
}

// Produce ставит в очередь одно DataEvent на запись и ровно одно ShutdownEvent в конце.
// При отмене контекста ShutdownEvent не ставится: consumer остановится по отмене,
// а запуск будет считаться незавершенным.
func (p *Producer) Produce(ctx context.Context, records []models.RetailTransaction) error {
	for _, rec := range records {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("producer interrupted after %d events: %w", p.stats.Submitted(), err)
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("producer interrupted after %d events: %w", p.stats.Submitted(), err)
		}

		seq := p.stats.incSubmitted()
		p.queue.Put(DataEvent{
			Type:   EventRetailTransaction,
			Seq:    seq,
			Record: rec,
		})
	}

	p.queue.Put(ShutdownEvent{})
	return nil
}
