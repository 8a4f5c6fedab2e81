package memory

import (
	"sync"

	"pet-adoption-admin/internal/session"
)

// Store guarda los tokens solo en memoria (tests y modo dev sin persistencia).
type Store struct {
	mu     sync.Mutex
	tokens session.Tokens
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load() (session.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

func (s *Store) Save(t session.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = session.Tokens{}
	return nil
}
