// pkg/db/transaction_manager_test.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTx struct {
	mock.Mock
}

func (m *mockTx) Commit() error {
	return m.Called().Error(0)
}

func (m *mockTx) Rollback() error {
	return m.Called().Error(0)
}

func txWith(tx TxController, beginErr error) Tx {
	return Tx{
		Begin: func(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
			if beginErr != nil {
				return nil, beginErr
			}
			return tx, nil
		},
		Commit:   CommitTx,
		Rollback: RollbackTx,
	}
}

func TestTxRun(t *testing.T) {
	t.Run("CommitsOnSuccess", func(t *testing.T) {
		tx := new(mockTx)
		tx.On("Commit").Return(nil).Once()
		tx.On("Rollback").Return(sql.ErrTxDone).Once()

		called := false
		err := txWith(tx, nil).Run(context.Background(), nil, func(got TxController) error {
			called = true
			assert.Same(t, tx, got)
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
		tx.AssertExpectations(t)
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		tx := new(mockTx)
		tx.On("Rollback").Return(nil).Once()

		err := txWith(tx, nil).Run(context.Background(), nil, func(TxController) error {
			return errors.New("write failed")
		})

		assert.EqualError(t, err, "write failed")
		tx.AssertNotCalled(t, "Commit")
		tx.AssertExpectations(t)
	})

	t.Run("CommitFails", func(t *testing.T) {
		tx := new(mockTx)
		tx.On("Commit").Return(errors.New("serialization failure")).Once()
		tx.On("Rollback").Return(nil).Once()

		err := txWith(tx, nil).Run(context.Background(), nil, func(TxController) error { return nil })

		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.ErrorContains(t, err, "serialization failure")
		tx.AssertExpectations(t)
	})

	t.Run("BeginFails", func(t *testing.T) {
		called := false
		err := txWith(nil, errors.New("connection refused")).Run(context.Background(), nil, func(TxController) error {
			called = true
			return nil
		})

		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.False(t, called)
	})
}
