package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/redis/go-redis/v9"
)

// SessionStore is the server-side session registry. The stored identity
// (user + role) is written in a single operation, so a session is never
// observable half-populated. Deleting is idempotent: logout must always
// succeed locally.
type SessionStore interface {
	Create(ctx context.Context, user *models.User) (string, error)
	Get(ctx context.Context, sessionID string) (*models.User, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (s *RedisSessionStore) Create(ctx context.Context, user *models.User) (string, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(id), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.User, error) {
	payload, err := s.rdb.GetEx(ctx, sessionKey(sessionID), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// MemorySessionStore is an in-memory SessionStore for demo mode and tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.User
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.User)}
}

func (s *MemorySessionStore) Create(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = *user
	return id, nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	cp := user
	return &cp, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
