// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is an in-process Store. Contents are lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	failOn map[string]error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// FailOn makes subsequent writes to key return err. A nil err removes the
// injected failure.
func (s *MemoryStore) FailOn(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOn, key)
		return
	}
	if s.failOn == nil {
		s.failOn = make(map[string]error)
	}
	s.failOn[key] = err
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[key]; err != nil {
		return err
	}
	s.values[key] = value
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Snapshot returns a copy of the stored values.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}
