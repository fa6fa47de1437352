// Package cache provides fast state reads for the API layer (not the
// source of truth). The Client interface keeps the backend swappable;
// deployments that outgrow the in-process store can point it at Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Client is the minimal key-value surface the server needs.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// MemoryClient is the in-process Client used by the single-node server.
type MemoryClient struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// NewMemoryClient creates an empty in-process cache.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{entries: make(map[string]memoryEntry)}
}

func (c *MemoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", ErrMiss
	}
	return entry.value, nil
}

func (c *MemoryClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cache: marshal value for %s: %w", key, err)
		}
		s = string(data)
	}

	entry := memoryEntry{value: s}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryClient) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

var _ Client = (*MemoryClient)(nil)

// StateCache holds the rendered /api/state document so the HTTP layer can
// serve polls without taking the engine lock every request.
type StateCache struct {
	client     Client
	expiration time.Duration
}

// NewStateCache creates a state cache over a client.
func NewStateCache(client Client) *StateCache {
	return &StateCache{
		client:     client,
		expiration: 1 * time.Second, // state goes stale within a tick or two
	}
}

// SetState caches a rendered state document.
func (c *StateCache) SetState(ctx context.Context, gameID string, document []byte) error {
	return c.client.Set(ctx, c.stateKey(gameID), document, c.expiration)
}

// GetState retrieves the cached state document. ErrMiss means render anew.
func (c *StateCache) GetState(ctx context.Context, gameID string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.stateKey(gameID))
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// Invalidate drops the cached state after an action changes it.
func (c *StateCache) Invalidate(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, c.stateKey(gameID))
}

func (c *StateCache) stateKey(gameID string) string {
	return fmt.Sprintf("game:%s:state", gameID)
}
