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

const keyPrefix = "session:"

// Key returns the Redis key for a session ID.
func Key(id string) string {
	return keyPrefix + id
}

// RedisStore keeps sessions as JSON documents with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	values := make(map[string][]uint)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &Session{id: id, values: values}, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s.snapshot())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, Key(s.ID()), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.markSaved()
	return nil
}

// MemoryStore keeps sessions in process memory. Used when Redis is unavailable.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]uint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]uint)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := New(id)
	for k, v := range values {
		s.values[k] = append([]uint(nil), v...)
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	snap := s.snapshot()
	m.mu.Lock()
	m.data[s.ID()] = snap
	m.mu.Unlock()
	s.markSaved()
	return nil
}
