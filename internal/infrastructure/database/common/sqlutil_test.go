package common

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "cafe-api/internal/domain/errors"
)

func TestWithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	var sawTx bool
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		sawTx = TxFromCtx(ctx) != nil
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawTx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	errBoom := errors.New("boom")
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTx(context.Background(), db, func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_JoinsOuterTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(outer context.Context) error {
		return WithTx(outer, db, func(inner context.Context) error {
			assert.Same(t, TxFromCtx(outer), TxFromCtx(inner))
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, domainErrors.ErrDatabaseError)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Same(t, db, GetRunner(context.Background(), db))

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	assert.Same(t, tx, GetRunner(CtxWithTx(context.Background(), tx), db))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWrapDBError(t *testing.T) {
	cause := errors.New("connection reset by peer")

	err := WrapDBError(cause, "find coffee")

	assert.ErrorIs(t, err, domainErrors.ErrDatabaseError)
	assert.ErrorIs(t, err, cause)
	assert.True(t, domainErrors.IsDatabaseError(err))
	assert.Contains(t, err.Error(), "find coffee")
	assert.Contains(t, err.Error(), "connection reset by peer")
}
