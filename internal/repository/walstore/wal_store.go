// internal/repository/walstore/wal_store.go
package walstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultWALDir    = "./wal/ledger"
	segmentThreshold = 1000
	maxSegments      = 100

	// batchKey marks a record whose value is a JSON object of several keys,
	// applied together on replay.
	batchKey = "\x00batch"
)

// KVStore appends every write to a WAL and replays it on open; the latest
// record for a key wins. Live keys are re-appended once per segment so that
// segment rotation never drops the current value of a key.
type KVStore struct {
	wal    *gowal.Wal
	mu     sync.RWMutex
	values map[string]string
}

// Open initializes a WAL-backed store under dir and replays its records.
func Open(dir string) (*KVStore, error) {
	if dir == "" {
		dir = defaultWALDir
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}

	s := &KVStore{wal: wal, values: make(map[string]string)}
	for m := range wal.Iterator() {
		if m.Key != batchKey {
			s.values[m.Key] = string(m.Value)
			continue
		}
		var entries map[string]string
		if err := json.Unmarshal(m.Value, &entries); err != nil {
			_ = wal.Close()
			return nil, errors.Wrap(err, "decode WAL batch")
		}
		for k, v := range entries {
			s.values[k] = v
		}
	}
	return s, nil
}

func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(key, []byte(value)); err != nil {
		return err
	}
	s.values[key] = value
	return s.maybeCheckpoint()
}

// SetMany writes all entries as a single WAL record, so a crash never leaves
// only some of them applied.
func (s *KVStore) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendBatch(entries); err != nil {
		return err
	}
	for k, v := range entries {
		s.values[k] = v
	}
	return s.maybeCheckpoint()
}

// CurrentIndex returns the latest WAL index stored.
func (s *KVStore) CurrentIndex() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.Close()
}

func (s *KVStore) append(key string, value []byte) error {
	if err := s.wal.Write(s.wal.CurrentIndex()+1, key, value); err != nil {
		return errors.Wrapf(err, "append %q to WAL", key)
	}
	return nil
}

func (s *KVStore) appendBatch(entries map[string]string) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "encode WAL batch")
	}
	return s.append(batchKey, payload)
}

// maybeCheckpoint re-appends every live key, as one batch, at each segment
// boundary.
func (s *KVStore) maybeCheckpoint() error {
	if s.wal.CurrentIndex()%segmentThreshold != 0 {
		return nil
	}
	if err := s.appendBatch(s.values); err != nil {
		return errors.Wrap(err, "checkpoint")
	}
	return nil
}
