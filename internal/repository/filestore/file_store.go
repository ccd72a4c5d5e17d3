// internal/repository/filestore/file_store.go
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"monetrax-ledger/internal/util"
)

const defaultStatePath = "./data/monetrax.json"

// KVStore persists every key in one JSON document, rewritten atomically on
// each write via a temp file and rename.
type KVStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// Open loads the document at path, creating parent directories as needed.
// A document that exists but cannot be decoded yields an error matching
// util.ErrCorrupted.
func Open(path string) (*KVStore, error) {
	if path == "" {
		path = defaultStatePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}

	s := &KVStore{path: path, values: make(map[string]string)}

	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, errors.Wrap(err, "read state file")
	}
	if len(payload) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(payload, &s.values); err != nil {
		return nil, errors.Wrapf(util.ErrCorrupted, "decode state file %s: %v", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Path returns the backing document location.
func (s *KVStore) Path() string { return s.path }

func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany applies all entries and persists them in a single rewrite.
// On failure the in-memory view is rolled back.
func (s *KVStore) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+len(entries))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range entries {
		next[k] = v
	}

	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *KVStore) Close() error { return nil }

func (s *KVStore) write(values map[string]string) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "write state temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist state")
	}
	return nil
}
