package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// TokenStore keeps the session token once a registration succeeds.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
}

type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// FileTokenStore writes the token to a file readable only by the owner.
type FileTokenStore struct {
	Path string
}

func (s FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return errors.Wrap(err, "token store: mkdir")
	}
	return errors.Wrap(os.WriteFile(s.Path, []byte(token+"\n"), 0o600), "token store: write")
}

func (s FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "token store: read")
	}
	return strings.TrimSpace(string(b)), nil
}
