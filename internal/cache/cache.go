// Package cache memoizes normalization stage results keyed by input content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists cache entries. Implementations are single-writer,
// single-reader per pipeline run; concurrent runs against the same store
// must be serialized by the caller.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Close() error
}

// Cache wraps a Store with content-hash keys and JSON values. It is an
// explicit object owned by the pipeline rather than process-wide state, so
// cache behavior stays testable.
type Cache struct {
	store Store
}

// New creates a cache on the given store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Key derives the cache key for a stage from the full content of its input.
// Any change to the input recomputes the whole stage; invalidation is
// content-driven, never time-based.
func Key(stage string, input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cache input: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(stage))
	h.Write([]byte{0})
	h.Write(data)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get loads a cached stage result into out. ok is false on a miss.
func (c *Cache) Get(key string, out any) (bool, error) {
	data, ok, err := c.store.Get(key)
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	return true, nil
}

// Put stores a stage result.
func (c *Cache) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.store.Put(key, data); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}

	return nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Memory is an in-process store for tests and one-shot runs.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]

	return value, ok, nil
}

// Put implements Store.
func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value

	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
