package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"retailsync/internal/domain/models"
	"retailsync/pipeline"
)

// DefaultCommitBatch количество записей между коммитами по умолчанию
const DefaultCommitBatch = 500

// TransactionWriter приемник конвейера: пишет розничные транзакции в БД.
// Владеет собственной транзакцией и подготовленным запросом, коммитит каждые
// batchSize записей и при Flush. Не потокобезопасен: используется одним consumer.
type TransactionWriter struct {
	conn      *sql.DB
	dialect   Dialect
	batchSize int

	tx      *sql.Tx
	stmt    *sql.Stmt
	pending int64

	committed int64
	broken    error
}

// NewTransactionWriter создает приемник. Транзакция открывается при первой записи.
func (s *Store) NewTransactionWriter(batchSize int) *TransactionWriter {
	if batchSize <= 0 {
		batchSize = DefaultCommitBatch
	}
	return &TransactionWriter{
		conn:      s.conn,
		dialect:   s.dialect,
		batchSize: batchSize,
	}
}

// WriteTransaction добавляет одну запись в текущую транзакцию.
// Ошибка, после которой хранилище непригодно, оборачивает pipeline.ErrSinkUnavailable.
func (w *TransactionWriter) WriteTransaction(ctx context.Context, rec models.RetailTransaction) error {
	if w.broken != nil {
		return w.broken
	}

	if w.tx == nil {
		if err := w.begin(ctx); err != nil {
			return w.fail(fmt.Errorf("failed to begin write transaction: %w", err))
		}
	}

	_, err := w.stmt.ExecContext(ctx,
		rec.OrderID, rec.OrderDate, rec.ProductName, rec.SKU, rec.Quantity,
		rec.City, rec.StoreType, rec.OnlineFlag, rec.WarehouseMatchText(),
	)
	if err != nil {
		err = fmt.Errorf("failed to insert transaction %s/%s: %w", rec.OrderID, rec.SKU, err)
		if w.dialect.IsConnectionFailure(err) || w.dialect.AbortsTxOnError() || ctx.Err() != nil {
			return w.fail(err)
		}
		return err
	}

	w.pending++
	if w.pending >= int64(w.batchSize) {
		return w.commit()
	}
	return nil
}

// Flush фиксирует накопленные записи
func (w *TransactionWriter) Flush(ctx context.Context) error {
	if w.broken != nil {
		return w.broken
	}
	if w.tx == nil {
		return nil
	}
	return w.commit()
}

// Committed возвращает количество зафиксированных записей
func (w *TransactionWriter) Committed() int64 {
	return w.committed
}

// Close откатывает незафиксированные записи
func (w *TransactionWriter) Close() error {
	if w.tx == nil {
		return nil
	}
	if w.pending > 0 {
		log.Printf("Rolling back %d uncommitted transaction rows", w.pending)
	}
	w.stmt.Close()
	err := w.tx.Rollback()
	w.tx, w.stmt, w.pending = nil, nil, 0
	if err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to rollback write transaction: %w", err)
	}
	return nil
}

func (w *TransactionWriter) begin(ctx context.Context) error {
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, w.dialect.Rebind(insertTransactionSQL))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	w.tx, w.stmt = tx, stmt
	return nil
}

func (w *TransactionWriter) commit() error {
	w.stmt.Close()
	err := w.tx.Commit()
	pending := w.pending
	w.tx, w.stmt, w.pending = nil, nil, 0
	if err != nil {
		// Незафиксированные записи не считаются сохраненными
		return w.fail(fmt.Errorf("failed to commit %d transaction rows: %w", pending, err))
	}
	w.committed += pending
	return nil
}

// fail переводит приемник в нерабочее состояние
func (w *TransactionWriter) fail(err error) error {
	if w.tx != nil {
		w.stmt.Close()
		w.tx.Rollback()
		w.tx, w.stmt, w.pending = nil, nil, 0
	}
	w.broken = fmt.Errorf("%w: %w", pipeline.ErrSinkUnavailable, err)
	return w.broken
}
