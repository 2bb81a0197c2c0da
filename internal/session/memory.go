package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node dev setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Load fetches a session, creating a default one when absent.
func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return NewSession(sessionID), nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return NewSession(sessionID), nil
	}
	return &sess, nil
}

// Save writes the session back.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = data
	s.mu.Unlock()
	return nil
}
