package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps a caller's transient telecaller selection between
// requests of one distribution session. It never touches telecaller profiles.
type SessionStore interface {
	// Load returns the stored selection; found is false when none exists or it expired.
	Load(ctx context.Context, key string) (selected []uuid.UUID, found bool, err error)
	Save(ctx context.Context, key string, selected []uuid.UUID) error
	Delete(ctx context.Context, key string) error
}

// SessionKey scopes a selection to one caller inside one manager scope.
func SessionKey(managerID, callerID uuid.UUID) string {
	return managerID.String() + ":" + callerID.String()
}

// MemoryStore is a process-local SessionStore with per-key expiry.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	selected  []uuid.UUID
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore whose entries live for ttl after the last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return append([]uuid.UUID(nil), entry.selected...), true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, selected []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		selected:  append([]uuid.UUID{}, selected...),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

const redisKeyPrefix = "leadflow:availability:"

// RedisStore keeps selections in Redis so every API replica sees the same
// session. Keys expire after ttl.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load availability session: %w", err)
	}

	var selected []uuid.UUID
	if err := json.Unmarshal(raw, &selected); err != nil {
		return nil, false, fmt.Errorf("decode availability session: %w", err)
	}
	return selected, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, selected []uuid.UUID) error {
	if selected == nil {
		selected = []uuid.UUID{}
	}
	raw, err := json.Marshal(selected)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save availability session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete availability session: %w", err)
	}
	return nil
}
