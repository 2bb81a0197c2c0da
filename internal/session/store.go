package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultSessionTTL = 24 * time.Hour

// Store supplies load/save primitives for per-player state. Load never fails
// on a missing key; it creates a fresh session instead. Storage errors are
// infrastructure errors, never game-logic errors.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
}

// RedisStore keeps sessions in Redis as JSON blobs with a sliding TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func (s *RedisStore) key(sessionID string) string {
	return fmt.Sprintf("game:session:%s", sessionID)
}

// Load fetches a session, creating a default one when absent.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return NewSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupted blob should not lock a player out of the game.
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("discarding corrupted session")
		return NewSession(sessionID), nil
	}
	return &sess, nil
}

// Save writes the session back and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
