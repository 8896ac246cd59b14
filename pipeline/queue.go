package pipeline

import (
	"context"
	"sync"
)

// Queue неограниченная FIFO очередь между producer и consumer.
// Put никогда не блокируется, Get ждет элемент или отмену контекста.
type Queue struct {
	mu        sync.Mutex
	items     []Event
	notify    chan struct{}
	highWater int
}

// NewQueue создает пустую очередь
func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
	}
}

// Put добавляет событие в конец очереди
func (q *Queue) Put(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	if len(q.items) > q.highWater {
		q.highWater = len(q.items)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
		// consumer уже разбужен
	}
}

// Get извлекает событие из начала очереди, ожидая его при пустой очереди
func (q *Queue) Get(ctx context.Context) (Event, error) {
	for {
		if ev, ok := q.tryGet(); ok {
			return ev, nil
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) tryGet() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev, true
}

// Len возвращает текущую длину очереди
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// HighWater возвращает максимальную длину очереди за время жизни
func (q *Queue) HighWater() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWater
}
