// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// Tx bundles the steps of a ledger write transaction. Stores take a Tx so
// tests can replace the steps without a live database.
type Tx struct {
	Begin    BeginTxFunc
	Commit   CommitTxFunc
	Rollback RollbackTxFunc
}

// DefaultTx runs transactions on a real connection.
func DefaultTx() Tx {
	return Tx{Begin: BeginTx, Commit: CommitTx, Rollback: RollbackTx}
}

// Run begins a transaction on conn and passes it to fn. The transaction is
// committed when fn succeeds and rolled back otherwise.
func (t Tx) Run(ctx context.Context, conn DBTxBeginner, fn func(tx TxController) error) error {
	tx, err := t.Begin(ctx, conn)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer t.Rollback(tx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := t.Commit(tx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// BeginTx starts a read-committed transaction: every ledger write replaces
// whole values, so stronger isolation buys nothing.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. Safe to defer after a commit.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		zap.L().Warn("ledger transaction rollback failed", zap.Error(err))
	}
}
