// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// FileStore keeps the session keys in a YAML document on disk.
// Every Set or Delete rewrites the whole file through a temp file and rename,
// so a single write is atomic even though a Session save is three writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file is created lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Init creates the parent directory with 0700 permissions.
func (s *FileStore) Init(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return oops.Code("SESSION_FILE_DIR_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_FILE_READ_FAILED").With("path", s.path).Wrap(err)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, oops.Code("SESSION_FILE_CORRUPT").With("path", s.path).Wrap(err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.yaml")
	if err != nil {
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return oops.Code("SESSION_FILE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}
