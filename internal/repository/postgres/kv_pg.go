// internal/repository/postgres/kv_pg.go
package postgres

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"monetrax-ledger/internal/repository"
	"monetrax-ledger/pkg/db"
)

const (
	schemaQuery = `CREATE TABLE IF NOT EXISTS ledger_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	getQuery    = `SELECT value FROM ledger_kv WHERE key = $1`
	upsertQuery = `INSERT INTO ledger_kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// KVStore implements repository.KVStore on a single PostgreSQL table.
type KVStore struct {
	dbBeginner db.DBTxBeginner       // For batch writes (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For single reads and writes (e.g., *sqlx.DB)
	closer     io.Closer
	tx         db.Tx
}

// NewKVStore creates a KVStore on an open connection.
func NewKVStore(conn *sqlx.DB) *KVStore {
	return NewKVStoreWith(conn, conn, conn, db.DefaultTx())
}

// NewKVStoreWith creates a KVStore with explicit collaborators.
func NewKVStoreWith(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	closer io.Closer,
	tx db.Tx,
) *KVStore {
	return &KVStore{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		closer:     closer,
		tx:         tx,
	}
}

// EnsureSchema creates the key-value table when missing.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.dbExecutor.ExecContext(ctx, schemaQuery); err != nil {
		return errors.Wrap(err, "failed to create ledger_kv table")
	}
	return nil
}

// Get retrieves the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.dbExecutor.GetContext(ctx, &value, getQuery, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "failed to get key %q", key)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return upsert(ctx, s.dbExecutor, key, value)
}

// SetMany upserts all entries inside one database transaction.
func (s *KVStore) SetMany(ctx context.Context, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := s.tx.Run(ctx, s.dbBeginner, func(tx db.TxController) error {
		txExecutor, ok := tx.(repository.DBExecutor)
		if !ok {
			return errors.New("transaction controller does not implement DBExecutor")
		}
		for _, k := range keys {
			if err := upsert(ctx, txExecutor, k, entries[k]); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "set many")
}

// Close closes the database connection.
func (s *KVStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func upsert(ctx context.Context, q repository.DBExecutor, key, value string) error {
	if _, err := q.ExecContext(ctx, upsertQuery, key, value, time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "failed to upsert key %q", key)
	}
	return nil
}
