package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionalFn func(ctx context.Context) error

//go:generate mockgen -source=tx.go -destination=mock_tx.go -package=pg
type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
	BeginTx(ctx context.Context, opts pgx.TxOptions, fn TransactionalFn) error
}

type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Snapshot makes every statement of a transaction read the same snapshot.
var Snapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// ReadOnlySnapshot is Snapshot for transactions that never write.
var ReadOnlySnapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

type txKey struct{}

type TxManager struct {
	db Beginner
}

func NewTXManager(db Beginner) *TxManager {
	return &TxManager{db: db}
}

// Begin runs fn inside a READ COMMITTED transaction. A nested call joins the outer transaction.
func (m *TxManager) Begin(ctx context.Context, fn TransactionalFn) error {
	return m.BeginTx(ctx, pgx.TxOptions{}, fn)
}

// BeginTx is Begin with explicit transaction options. A nested call joins the outer
// transaction and keeps its options.
func (m *TxManager) BeginTx(ctx context.Context, opts pgx.TxOptions, fn TransactionalFn) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
