package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/application/port"
)

type txKey struct{}

const (
	defaultBusyRetries = 3
	defaultBusyBackoff = 20 * time.Millisecond
)

// TxManager runs units of work in SQLite transactions carried by the context.
// Repositories pick the transaction up through ExecutorFor.
type TxManager struct {
	db          *sql.DB
	logger      *zap.Logger
	busyRetries int
	busyBackoff time.Duration
}

// TxOption configures a TxManager
type TxOption func(*TxManager)

// WithBusyRetries sets how often a unit of work is retried when SQLite
// reports the database as busy or locked. Zero disables retries.
func WithBusyRetries(n int, backoff time.Duration) TxOption {
	return func(m *TxManager) {
		m.busyRetries = n
		m.busyBackoff = backoff
	}
}

// NewTxManager creates a transaction manager over db
func NewTxManager(db *sql.DB, logger *zap.Logger, opts ...TxOption) *TxManager {
	m := &TxManager{
		db:          db,
		logger:      logger,
		busyRetries: defaultBusyRetries,
		busyBackoff: defaultBusyBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithTransaction runs fn in one transaction. A call nested inside another
// WithTransaction joins the outer one. fn may run again when SQLite was busy,
// so it must not have effects outside the transaction.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ExtractTx(ctx) != nil {
		return fn(ctx)
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !isBusy(err) || attempt >= m.busyRetries {
			return err
		}

		m.logger.Info("Database busy, retrying transaction", zap.Int("attempt", attempt+1))
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to run transaction: %w", ctx.Err())
		case <-time.After(m.busyBackoff * time.Duration(attempt+1)):
		}
	}
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			m.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		m.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// ExtractTx returns the transaction carried by ctx, if any
func ExtractTx(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ExecutorFor returns the transaction in ctx, or db when there is none
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

var _ port.TransactionManager = (*TxManager)(nil)
