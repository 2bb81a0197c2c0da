package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultChallengeTTL = 10 * time.Minute

// Store is the short-lived challenge table keyed by challenge id. Consume is
// atomic: under racing evaluations at most one caller gets the challenge.
type Store interface {
	Put(ctx context.Context, ch *Challenge) error
	Peek(ctx context.Context, id string) (*Challenge, error)
	Consume(ctx context.Context, id string) (*Challenge, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps challenges in Redis with a short TTL so abandoned
// challenges expire on their own.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultChallengeTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("game:challenge:%s", id)
}

// Put stores or refreshes a challenge record.
func (s *RedisStore) Put(ctx context.Context, ch *Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(ch.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

// Peek reads a challenge without consuming it.
func (s *RedisStore) Peek(ctx context.Context, id string) (*Challenge, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrUnknownChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("peek challenge: %w", err)
	}
	return unmarshalChallenge(data)
}

// Consume atomically removes and returns a challenge. GETDEL guarantees the
// at-most-once property under concurrent evaluations.
func (s *RedisStore) Consume(ctx context.Context, id string) (*Challenge, error) {
	data, err := s.redis.GetDel(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrUnknownChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	return unmarshalChallenge(data)
}

// Delete invalidates a challenge; a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

func unmarshalChallenge(data []byte) (*Challenge, error) {
	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return &ch, nil
}

// MemoryStore is an in-process Store for tests and single-node dev setups.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{challenges: make(map[string]*Challenge)}
}

func (s *MemoryStore) Put(ctx context.Context, ch *Challenge) error {
	copied := *ch
	s.mu.Lock()
	s.challenges[ch.ID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Peek(ctx context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrUnknownChallenge
	}
	copied := *ch
	return &copied, nil
}

func (s *MemoryStore) Consume(ctx context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrUnknownChallenge
	}
	delete(s.challenges, id)
	return ch, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.challenges, id)
	s.mu.Unlock()
	return nil
}
