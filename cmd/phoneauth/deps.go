// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/session/postgres"
	"github.com/phoneauth/phoneauth/internal/tui"
	"github.com/phoneauth/phoneauth/internal/xdg"
)

// Deps contains injectable dependencies for every command.
// All fields with nil values will use their default implementations.
type Deps struct {
	// Getenv reads environment variables.
	// Default: os.Getenv
	Getenv func(string) string

	// ConfigPath returns the config file used when --config is unset.
	// Default: xdg.ConfigFile
	ConfigPath func() string

	// SessionPath returns the session file used when session.file is unset.
	// Default: xdg.SessionFile
	SessionPath func() string

	// LogPath returns the log file used while the terminal UI runs.
	// Default: xdg.LogFile
	LogPath func() string

	// IsTerminal reports whether stdin and stdout are a terminal.
	// Default: isatty checks on os.Stdin and os.Stdout
	IsTerminal func() bool

	// PostgresStoreFactory opens the postgres session backend.
	// Default: postgres.Open
	PostgresStoreFactory func(ctx context.Context, url, profile string) (PostgresStore, error)

	// MigratorFactory creates a schema migrator.
	// Default: postgres.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// TUIRunner shows the terminal UI until sign-in completes.
	// Default: tui.Run
	TUIRunner func(ctx context.Context, m tui.Model) (session.Session, error)
}

// PostgresStore wraps the methods used from postgres.Store.
type PostgresStore interface {
	session.Store
	session.Initializer
	Close()
}

// Migrator wraps the methods used from postgres.Migrator.
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Pending() ([]uint, error)
	Close() error
}

// withDefaults returns a copy of d with every nil field set.
func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	if out.ConfigPath == nil {
		out.ConfigPath = xdg.ConfigFile
	}
	if out.SessionPath == nil {
		out.SessionPath = xdg.SessionFile
	}
	if out.LogPath == nil {
		out.LogPath = xdg.LogFile
	}
	if out.IsTerminal == nil {
		out.IsTerminal = stdioIsTerminal
	}
	if out.PostgresStoreFactory == nil {
		out.PostgresStoreFactory = func(ctx context.Context, url, profile string) (PostgresStore, error) {
			return postgres.Open(ctx, url, profile)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			return postgres.NewMigrator(url)
		}
	}
	if out.TUIRunner == nil {
		out.TUIRunner = func(ctx context.Context, m tui.Model) (session.Session, error) {
			return tui.Run(ctx, m)
		}
	}
	return &out
}

func stdioIsTerminal() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
