// internal/repository/ledger_store.go
package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/util"
)

const keyPrefix = "monetrax"

// Persisted field names.
const (
	FieldTransactions = "transactions"
	FieldNetTotal     = "netTotal"
	GlobalUserID      = "userId"
)

// LedgerStore is the namespaced persistence store. Per-user fields live under
// "monetrax:<userId>:<field>"; global keys under "monetrax:<key>".
type LedgerStore struct {
	kv KVStore
}

// NewLedgerStore wraps a durable medium.
func NewLedgerStore(kv KVStore) *LedgerStore {
	return &LedgerStore{kv: kv}
}

// Key returns the namespaced key of a user field.
func Key(userID domain.UserIdentity, field string) string {
	return strings.Join([]string{keyPrefix, userID.String(), field}, ":")
}

// GlobalKey returns the key of a value that is not scoped to a user.
func GlobalKey(name string) string {
	return keyPrefix + ":" + name
}

// Load reads one user field. found is false when nothing was ever saved.
func (s *LedgerStore) Load(ctx context.Context, userID domain.UserIdentity, field string) (string, bool, error) {
	return s.get(ctx, Key(userID, field))
}

// Save writes one user field.
func (s *LedgerStore) Save(ctx context.Context, userID domain.UserIdentity, field, value string) error {
	return s.set(ctx, Key(userID, field), value)
}

// SaveFields writes several user fields, atomically when the medium supports it.
func (s *LedgerStore) SaveFields(ctx context.Context, userID domain.UserIdentity, fields map[string]string) error {
	entries := make(map[string]string, len(fields))
	for field, value := range fields {
		entries[Key(userID, field)] = value
	}

	if batch, ok := s.kv.(BatchSetter); ok {
		if err := batch.SetMany(ctx, entries); err != nil {
			return errors.Wrapf(util.ErrStorageUnavailable, "save fields for %s: %v", userID, err)
		}
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.set(ctx, k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}

// LoadGlobal reads a non-namespaced key.
func (s *LedgerStore) LoadGlobal(ctx context.Context, name string) (string, bool, error) {
	return s.get(ctx, GlobalKey(name))
}

// SaveGlobal writes a non-namespaced key.
func (s *LedgerStore) SaveGlobal(ctx context.Context, name, value string) error {
	return s.set(ctx, GlobalKey(name), value)
}

// Close closes the underlying medium.
func (s *LedgerStore) Close() error {
	return s.kv.Close()
}

func (s *LedgerStore) get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", false, errors.Wrapf(util.ErrStorageUnavailable, "load %s: %v", key, err)
	}
	return value, found, nil
}

func (s *LedgerStore) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return errors.Wrapf(util.ErrStorageUnavailable, "save %s: %v", key, err)
	}
	return nil
}
