// Package session holds the consolidated table of each user session. A
// table is stored whole on upload and replaced whole; it is never patched.
package session

import (
	"context"
	"convenios-dashboard/internal/convenio"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoTable is returned when the session has not uploaded anything yet or
// its table expired.
var ErrNoTable = errors.New("no table loaded for this session")

type Store interface {
	Save(ctx context.Context, sessionID string, t *convenio.Table) error
	Load(ctx context.Context, sessionID string) (*convenio.Table, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps tables as JSON values that expire with the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func tableKey(sessionID string) string {
	return fmt.Sprintf("session:%s:table", sessionID)
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, t *convenio.Table) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return s.client.Set(ctx, tableKey(sessionID), b, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*convenio.Table, error) {
	b, err := s.client.Get(ctx, tableKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoTable
	}
	if err != nil {
		return nil, err
	}
	var t convenio.Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return &t, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, tableKey(sessionID)).Err()
}

type memoryEntry struct {
	table   *convenio.Table
	expires time.Time
}

// MemoryStore keeps tables in process. It is used when Redis is not
// reachable.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, t *convenio.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{table: t, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*convenio.Table, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoTable
	}
	if s.now().After(e.expires) {
		s.mu.Lock()
		// a Save may have replaced the entry since the read lock was released
		if cur, ok := s.entries[sessionID]; ok && s.now().After(cur.expires) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, ErrNoTable
	}
	return e.table, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
