// Package storage persists generated posters on local disk and derives the
// public URLs they are served under.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes poster PNGs into a directory.
type Store struct {
	dir     string
	baseURL string
}

// New creates the store, creating the poster directory if needed.
func New(dir, baseURL string) (*Store, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create poster directory %s: %w", dir, err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// EnsureDir creates path and its parents if they do not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Save writes the encoded poster under the given id and returns its path.
func (s *Store) Save(id string, png []byte) (string, error) {
	path := s.path(id)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write poster %s: %w", id, err)
	}
	return path, nil
}

// Open reads a stored poster. The error wraps os.ErrNotExist for unknown ids.
func (s *Store) Open(id string) ([]byte, error) {
	return os.ReadFile(s.path(id))
}

// PublicURL returns the URL the poster with the given id is served under.
func (s *Store) PublicURL(id string) string {
	return s.baseURL + "/" + id + "/image"
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".png")
}
