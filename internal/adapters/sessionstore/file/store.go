package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pet-adoption-admin/internal/session"
)

// Store persiste los tokens como JSON en disco bajo keys fijas
// (accessToken / refreshToken), el equivalente al localStorage del browser.
// Permisos 0600: el archivo contiene credenciales.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sessionstore: path required")
	}
	return &Store{path: path}, nil
}

func (s *Store) Load() (session.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Tokens{}, nil
		}
		return session.Tokens{}, fmt.Errorf("sessionstore: read %s: %w", s.path, err)
	}

	var t session.Tokens
	if err := json.Unmarshal(b, &t); err != nil {
		// Archivo corrupto: mejor sesión vacía que bloquear el arranque.
		return session.Tokens{}, nil
	}
	return t, nil
}

func (s *Store) Save(t session.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sessionstore: mkdir %s: %w", dir, err)
		}
	}

	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("sessionstore: write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sessionstore: remove %s: %w", s.path, err)
	}
	return nil
}
