// Package session keeps one-request flash data (success messages, validation errors and
// old form input) for browser clients, keyed by a session cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Flash is data shown on the next page render and then discarded.
type Flash struct {
	Success string              `json:"success,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Old     map[string]string   `json:"old,omitempty"`
}

// Store persists flash data between a redirect and the following request.
type Store interface {
	// Save stores flash for the session, replacing anything already there.
	Save(ctx context.Context, id string, flash Flash, ttl time.Duration) error

	// Take returns and removes the flash for the session. It returns nil when there is none.
	Take(ctx context.Context, id string) (*Flash, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	flash     Flash
	expiresAt time.Time
}

// MemoryStore keeps flash data in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Save stores flash for id until ttl elapses.
func (s *MemoryStore) Save(_ context.Context, id string, flash Flash, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	s.entries[id] = memoryEntry{flash: flash, expiresAt: now.Add(ttl)}
	return nil
}

// Take returns and deletes the flash for id.
func (s *MemoryStore) Take(_ context.Context, id string) (*Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	delete(s.entries, id)

	if !s.now().Before(entry.expiresAt) {
		return nil, nil
	}
	return &entry.flash, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictExpired must be called with mu held.
func (s *MemoryStore) evictExpired(now time.Time) {
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

const redisKeyPrefix = "flash:"

// RedisStore keeps flash data in Redis so it survives restarts and is shared between instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores flash as JSON with an expiry of ttl.
func (s *RedisStore) Save(ctx context.Context, id string, flash Flash, ttl time.Duration) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save flash: %w", err)
	}
	return nil
}

// Take reads and deletes the flash atomically.
func (s *RedisStore) Take(ctx context.Context, id string) (*Flash, error) {
	data, err := s.client.GetDel(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take flash: %w", err)
	}

	var flash Flash
	if err := json.Unmarshal(data, &flash); err != nil {
		return nil, fmt.Errorf("failed to decode flash: %w", err)
	}
	return &flash, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
