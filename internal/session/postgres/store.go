// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package postgres implements session.Store on a PostgreSQL table, for
// shared-device deployments where the session must outlive the local disk.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/phoneauth/phoneauth/internal/session"
)

// DefaultProfile namespaces rows when no profile is configured.
const DefaultProfile = "default"

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store implements session.Store using PostgreSQL.
type Store struct {
	db      DB
	profile string
	backoff func() retry.Backoff
	close   func()
}

var _ session.Store = (*Store)(nil)

// NewStore creates a Store over an existing connection.
func NewStore(db DB, profile string) *Store {
	if profile == "" {
		profile = DefaultProfile
	}
	return &Store{
		db:      db,
		profile: profile,
		backoff: defaultBackoff,
		close:   func() {},
	}
}

// Open connects to databaseURL and returns a Store that owns the pool.
func Open(ctx context.Context, databaseURL, profile string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	s := NewStore(pool, profile)
	s.close = pool.Close
	return s, nil
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
}

// Close releases the pool when the Store owns one.
func (s *Store) Close() {
	s.close()
}

// Init verifies the database is reachable, retrying transient failures.
func (s *Store) Init(ctx context.Context) error {
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		if err := s.db.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return nil
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `
		SELECT value FROM session_values
		WHERE profile = $1 AND key = $2
	`, s.profile, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.wrap(err, "select session value", key)
	}
	return value, true, nil
}

// Set implements session.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO session_values (profile, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (profile, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, s.profile, key, value)
	if err != nil {
		return s.wrap(err, "upsert session value", key)
	}
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM session_values
		WHERE profile = $1 AND key = $2
	`, s.profile, key)
	if err != nil {
		return s.wrap(err, "delete session value", key)
	}
	return nil
}

func (s *Store) wrap(err error, operation, key string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return oops.Code("SESSION_SCHEMA_MISSING").
			With("operation", operation).
			Hint("run `phoneauth migrate` to create the session table").
			Wrap(err)
	}
	return oops.Code("SESSION_QUERY_FAILED").
		With("operation", operation).
		With("profile", s.profile).
		With("key", key).
		Wrap(err)
}
