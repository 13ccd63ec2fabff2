package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	domainErrors "cafe-api/internal/domain/errors"
)

// RowScanner is implemented by both *sql.Row and *sql.Rows
type RowScanner interface {
	Scan(dest ...any) error
}

// Runner is implemented by both *sql.DB and *sql.Tx
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txKey struct{}

// CtxWithTx stores tx in ctx
func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx returns the transaction stored in ctx, or nil
func TxFromCtx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// GetRunner returns the transaction carried by ctx, falling back to db
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx := TxFromCtx(ctx); tx != nil {
		return tx
	}
	return db
}

// WithTx runs fn inside a transaction on db. When ctx already carries a
// transaction, fn joins it instead of opening a new one.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if TxFromCtx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return WrapDBError(err, "begin transaction")
	}
	txCtx := CtxWithTx(ctx, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapDBError(err, "commit transaction")
	}
	return nil
}

// WrapDBError marks err as a store failure. The driver error stays reachable
// through errors.As.
func WrapDBError(err error, op string) error {
	return errors.Wrap(fmt.Errorf("%w: %w", domainErrors.ErrDatabaseError, err), op)
}
