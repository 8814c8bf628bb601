// Package storage provides the durable slots behind session.Store.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps the token as a plain string in a single file.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile stores the token at dir/name. The directory is created on first
// save.
func NewFile(dir, name string) *File {
	return &File{path: filepath.Join(dir, name)}
}

// Path returns the slot location.
func (f *File) Path() string { return f.path }

func (f *File) Load(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	token := strings.TrimSpace(string(raw))
	return token, token != "", nil
}

// Save writes through a temp file and rename so a crash never leaves a
// truncated token behind.
func (f *File) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
