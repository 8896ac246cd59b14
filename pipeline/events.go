package pipeline

import (
	"retailsync/internal/domain/models"
)

// EventType тип события с данными
type EventType string

const (
	// EventRetailTransaction одна розничная транзакция для записи
	EventRetailTransaction EventType = "RETAIL_TRANSACTION"
)

// Event элемент очереди: DataEvent или ShutdownEvent.
// Набор реализаций закрыт, consumer обрабатывает оба варианта явно.
type Event interface {
	isEvent()
}

// DataEvent событие с записью для приемника
type DataEvent struct {
	Type   EventType
	Seq    int64 // порядковый номер в потоке producer, с 1
	Record models.RetailTransaction
}

// ShutdownEvent завершающее событие: после него consumer сбрасывает буфер и останавливается
type ShutdownEvent struct{}

func (DataEvent) isEvent()     {}
func (ShutdownEvent) isEvent() {}
