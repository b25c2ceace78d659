// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package session

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/samber/oops"
)

// Manager owns the session keys in a Store.
type Manager struct {
	store       Store
	logger      *slog.Logger
	initialized atomic.Bool
}

// NewManager creates a Manager with a no-op logger.
func NewManager(store Store) (*Manager, error) {
	return NewManagerWithLogger(store, slog.New(slog.DiscardHandler))
}

// NewManagerWithLogger creates a Manager with the provided logger.
func NewManagerWithLogger(store Store, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, oops.Errorf("session store is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Manager{store: store, logger: logger}, nil
}

// Init prepares the underlying store. It must be called once before any
// other method.
func (m *Manager) Init(ctx context.Context) error {
	if in, ok := m.store.(Initializer); ok {
		if err := in.Init(ctx); err != nil {
			return oops.Code("SESSION_INIT_FAILED").Wrap(err)
		}
	}
	m.initialized.Store(true)
	return nil
}

func (m *Manager) ready() error {
	if !m.initialized.Load() {
		return oops.Code("SESSION_NOT_INITIALIZED").Wrap(ErrNotInitialized)
	}
	return nil
}

// Save writes token, name and phone as three separate writes.
//
// The writes are not transactional. A failure aborts the remaining writes and
// leaves earlier keys in place; callers must treat a non-nil error as "no
// durable session" and must not advance to the authenticated state.
func (m *Manager) Save(ctx context.Context, s Session) error {
	if err := m.ready(); err != nil {
		return err
	}
	values := map[string]string{
		KeyToken:     s.Token,
		KeyUserName:  s.UserName,
		KeyUserPhone: s.UserPhone,
	}
	for i, key := range Keys {
		if err := m.store.Set(ctx, key, values[key]); err != nil {
			m.logger.WarnContext(ctx, "session write failed; earlier keys are not rolled back",
				"key", key,
				"written", Keys[:i],
				"error", err,
			)
			return oops.Code("SESSION_SAVE_FAILED").With("key", key).Wrap(err)
		}
	}
	m.logger.InfoContext(ctx, "session saved", "user_phone", MaskPhone(s.UserPhone))
	return nil
}

// Token returns the stored token, or "" when none is stored.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if err := m.ready(); err != nil {
		return "", err
	}
	token, _, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return "", oops.Code("SESSION_READ_FAILED").With("key", KeyToken).Wrap(err)
	}
	return token, nil
}

// Load returns the stored session. ok is false when no non-empty token is stored.
func (m *Manager) Load(ctx context.Context) (Session, bool, error) {
	if err := m.ready(); err != nil {
		return Session{}, false, err
	}
	var s Session
	fields := map[string]*string{
		KeyToken:     &s.Token,
		KeyUserName:  &s.UserName,
		KeyUserPhone: &s.UserPhone,
	}
	for _, key := range Keys {
		v, _, err := m.store.Get(ctx, key)
		if err != nil {
			return Session{}, false, oops.Code("SESSION_READ_FAILED").With("key", key).Wrap(err)
		}
		*fields[key] = v
	}
	return s, s.Authenticated(), nil
}

// Clear deletes every session key. All deletes are attempted; the first
// error is returned.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.ready(); err != nil {
		return err
	}
	var firstErr error
	for _, key := range Keys {
		if err := m.store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = oops.Code("SESSION_CLEAR_FAILED").With("key", key).Wrap(err)
		}
	}
	if firstErr == nil {
		m.logger.InfoContext(ctx, "session cleared")
	}
	return firstErr
}
