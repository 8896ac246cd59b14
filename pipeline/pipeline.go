package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"retailsync/internal/domain/models"
)

// Config параметры конвейера
type Config struct {
	// EventsPerSecond темп producer; 0 = без ограничения
	EventsPerSecond float64
	// Burst размер пачки событий без паузы
	Burst  int
	Logger *slog.Logger
}

// Result итог работы конвейера
type Result struct {
	Submitted      int64
	Written        int64
	Durable        int64
	Failed         int64
	QueueHighWater int
	State          ConsumerState
	Completed      bool
	Duration       time.Duration
	Err            error
}

// Summary переводит результат в формат сводки запуска
func (r Result) Summary() models.PipelineSummary {
	return models.PipelineSummary{
		Submitted:      r.Submitted,
		Written:        r.Written,
		Durable:        r.Durable,
		Failed:         r.Failed,
		QueueHighWater: r.QueueHighWater,
		State:          r.State.String(),
		Completed:      r.Completed,
	}
}

// Pipeline связывает producer, очередь и единственный consumer.
// Очередь принадлежит конвейеру и передается обеим сторонам.
type Pipeline struct {
	queue    *Queue
	sink     Sink
	stats    *Stats
	producer *Producer
	consumer *Consumer
	logger   *slog.Logger

	mu        sync.Mutex
	started   bool
	startedAt time.Time
	done      chan struct{}
	runErr    error
}

// New создает конвейер для приемника
func New(sink Sink, config Config) *Pipeline {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if config.EventsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.EventsPerSecond), burst)
	}

	queue := NewQueue()
	stats := &Stats{}
	return &Pipeline{
		queue:    queue,
		sink:     sink,
		stats:    stats,
		producer: NewProducer(queue, limiter, stats),
		consumer: NewConsumer(queue, sink, stats, logger),
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true
	p.startedAt = time.Now()

	go func() {
		defer close(p.done)
		err := p.consumer.Run(ctx)
		p.mu.Lock()
		p.runErr = err
		p.mu.Unlock()
	}()

	p.logger.Info("Pipeline consumer started")
	return nil
}

// Submit передает записи producer. Вызывается после Start.
// Если consumer остановился раньше времени, producer прекращает работу.
func (p *Pipeline) Submit(ctx context.Context, records []models.RetailTransaction) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-p.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	return p.producer.Produce(ctx, records)
}

// Wait ждет остановки consumer и возвращает результат
func (p *Pipeline) Wait() Result {
	<-p.done

	p.mu.Lock()
	runErr := p.runErr
	startedAt := p.startedAt
	p.mu.Unlock()

	result := Result{
		Submitted:      p.stats.Submitted(),
		Written:        p.stats.Written(),
		Failed:         p.stats.Failed(),
		QueueHighWater: p.queue.HighWater(),
		State:          p.consumer.State(),
		Completed:      p.consumer.Completed(),
		Duration:       time.Since(startedAt),
		Err:            runErr,
	}

	switch sink := p.sink.(type) {
	case DurableSink:
		result.Durable = sink.Committed()
	default:
		if result.Completed {
			result.Durable = result.Written
		}
	}

	p.logger.Info("Pipeline finished",
		"stats", p.stats,
		"durable", result.Durable,
		"state", result.State.String(),
		"completed", result.Completed,
		"duration", result.Duration)
	return result
}

// Run запускает consumer, передает все записи и дожидается завершения.
// Ошибка producer (отмена контекста) не мешает дождаться consumer.
func (p *Pipeline) Run(ctx context.Context, records []models.RetailTransaction) (Result, error) {
	if err := p.Start(ctx); err != nil {
		return Result{}, err
	}

	produceErr := p.Submit(ctx, records)
	result := p.Wait()

	if result.Err == nil && produceErr != nil {
		result.Err = produceErr
	}
	return result, result.Err
}

// Stats возвращает живые счетчики конвейера
func (p *Pipeline) Stats() *Stats {
	return p.stats
}
