package testhelpers

import (
	"context"
	"sync"
	"time"
)

// RecordingDocumentCache is an in-memory document cache that records
// deletions so tests can assert on invalidation.
type RecordingDocumentCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func NewRecordingDocumentCache() *RecordingDocumentCache {
	return &RecordingDocumentCache{entries: make(map[string][]byte)}
}

func (c *RecordingDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *RecordingDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *RecordingDocumentCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// Cached reports whether a value is currently stored under key.
func (c *RecordingDocumentCache) Cached(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Deleted returns the keys removed so far, in order.
func (c *RecordingDocumentCache) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}
