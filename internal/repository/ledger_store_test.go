// internal/repository/ledger_store_test.go
package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/repository"
	"monetrax-ledger/internal/repository/memory"
	"monetrax-ledger/internal/util"
)

// plainKV has no batch support, so SaveFields falls back to single writes.
type plainKV struct {
	values map[string]string
	failOn string
}

func (p *plainKV) Get(_ context.Context, key string) (string, bool, error) {
	if key == p.failOn {
		return "", false, errors.New("quota exceeded")
	}
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *plainKV) Set(_ context.Context, key, value string) error {
	if key == p.failOn {
		return errors.New("quota exceeded")
	}
	p.values[key] = value
	return nil
}

func (p *plainKV) Close() error { return nil }

func TestLedgerStoreNamespacing(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLedgerStore(memory.NewKVStore())

	alice, bob := domain.UserIdentity("user_a"), domain.UserIdentity("user_b")
	require.NoError(t, store.Save(ctx, alice, repository.FieldNetTotal, "10.00"))
	require.NoError(t, store.Save(ctx, bob, repository.FieldNetTotal, "-5.00"))
	require.NoError(t, store.SaveGlobal(ctx, repository.GlobalUserID, "user_a"))

	v, found, err := store.Load(ctx, alice, repository.FieldNetTotal)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "10.00", v)

	v, _, _ = store.Load(ctx, bob, repository.FieldNetTotal)
	assert.Equal(t, "-5.00", v)

	_, found, err = store.Load(ctx, alice, repository.FieldTransactions)
	require.NoError(t, err)
	assert.False(t, found)

	v, found, _ = store.LoadGlobal(ctx, repository.GlobalUserID)
	assert.True(t, found)
	assert.Equal(t, "user_a", v)

	assert.Equal(t, "monetrax:user_a:netTotal", repository.Key(alice, repository.FieldNetTotal))
	assert.Equal(t, "monetrax:userId", repository.GlobalKey(repository.GlobalUserID))
}

func TestLedgerStoreSaveFields(t *testing.T) {
	ctx := context.Background()
	user := domain.UserIdentity("user_a")

	t.Run("Sequential", func(t *testing.T) {
		kv := &plainKV{values: map[string]string{}}
		store := repository.NewLedgerStore(kv)

		err := store.SaveFields(ctx, user, map[string]string{
			repository.FieldNetTotal:     "1.00",
			repository.FieldTransactions: "[]",
		})
		require.NoError(t, err)
		assert.Len(t, kv.values, 2)
	})

	t.Run("Batch", func(t *testing.T) {
		kv := memory.NewKVStore()
		store := repository.NewLedgerStore(kv)

		require.NoError(t, store.SaveFields(ctx, user, map[string]string{repository.FieldNetTotal: "2.00"}))
		v, _, _ := kv.Get(ctx, "monetrax:user_a:netTotal")
		assert.Equal(t, "2.00", v)
	})

	t.Run("FailureIsStorageUnavailable", func(t *testing.T) {
		kv := &plainKV{values: map[string]string{}, failOn: "monetrax:user_a:transactions"}
		store := repository.NewLedgerStore(kv)

		err := store.SaveFields(ctx, user, map[string]string{repository.FieldTransactions: "[]"})
		assert.ErrorIs(t, err, util.ErrStorageUnavailable)
		assert.Contains(t, err.Error(), "quota exceeded")

		_, _, err = store.Load(ctx, user, repository.FieldTransactions)
		assert.ErrorIs(t, err, util.ErrStorageUnavailable)
	})
}
