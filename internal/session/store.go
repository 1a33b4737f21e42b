// Package session implements the in-memory store for opaque session tokens.
//
// Membership is the only semantic: a token is valid exactly while it is
// present in the store. There is no expiry; revocation is explicit.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds the set of live session tokens for the server's lifetime.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewStore returns an empty token store.
func NewStore() *Store {
	return &Store{tokens: make(map[string]struct{})}
}

// Create mints a globally-unique opaque token and records it.
func (s *Store) Create() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
	return token
}

// IsValid reports whether the token is currently present.
func (s *Store) IsValid(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Revoke removes the token. Revoking an absent token is a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// Clear empties the store. Administrative use only.
func (s *Store) Clear() {
	s.mu.Lock()
	s.tokens = make(map[string]struct{})
	s.mu.Unlock()
}

// Len reports the number of live tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
