package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrKeyNotFound is returned by Get when the key was never stored.
var ErrKeyNotFound = errors.New("key not found in local store")

// LocalStore is a small JSON-file key/value store for per-install state
// that does not belong in DynamoDB: the last sign-in's display name and
// the recently played list. One file, rewritten whole on every Set.
type LocalStore struct {
	Path string

	mu sync.Mutex
}

func NewLocalStore(path string) *LocalStore {
	if path == "" {
		path = "satex_local.json"
	}
	return &LocalStore{Path: path}
}

func (ls *LocalStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(ls.Path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt store file starts over rather than wedging startup.
		return map[string]json.RawMessage{}, nil
	}
	return entries, nil
}

// Get unmarshals the stored value for key into out.
func (ls *LocalStore) Get(key string, out interface{}) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	entries, err := ls.load()
	if err != nil {
		return err
	}
	raw, ok := entries[key]
	if !ok {
		return ErrKeyNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode local store entry %q: %w", key, err)
	}
	return nil
}

// Set stores value under key, creating parent directories as needed.
func (ls *LocalStore) Set(key string, value interface{}) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	entries, err := ls.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode local store entry %q: %w", key, err)
	}
	entries[key] = raw

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(ls.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create local store dir: %w", err)
		}
	}
	if err := os.WriteFile(ls.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (ls *LocalStore) Delete(key string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	entries, err := ls.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ls.Path, data, 0o644)
}
