package auth

import (
	"context"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{hashes: make(map[string]string)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
type InMemorySessionStore struct {
	mu     sync.RWMutex
	hashes map[string]string
}

// Save records the refresh token hash for a user.
func (s *InMemorySessionStore) Save(_ context.Context, userID, tokenHash string) error {
	s.mu.Lock()
	s.hashes[userID] = tokenHash
	s.mu.Unlock()
	return nil
}

// Find returns the refresh token hash recorded for a user.
func (s *InMemorySessionStore) Find(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	hash, ok := s.hashes[userID]
	s.mu.RUnlock()
	if !ok || hash == "" {
		return "", ErrSessionNotFound
	}
	return hash, nil
}

// Delete forgets the user's refresh token.
func (s *InMemorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.hashes, userID)
	s.mu.Unlock()
	return nil
}

// Has reports whether a user has an active refresh token. Useful for tests.
func (s *InMemorySessionStore) Has(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[userID]
	return ok
}
