// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phoneauth/phoneauth/internal/config"
	"github.com/phoneauth/phoneauth/internal/logging"
	"github.com/phoneauth/phoneauth/internal/observability"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/pkg/errutil"
)

const serviceName = "phoneauth"

func loadConfig(cmd *cobra.Command, deps *Deps) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		DefaultPath: deps.ConfigPath(),
		Flags:       cmd.Flags(),
		Getenv:      deps.Getenv,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.Setup(serviceName, version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level), w)
}

// openSessions builds and initializes the session manager for the configured
// backend. The returned close func releases backend resources.
func openSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps *Deps) (*session.Manager, func(), error) {
	var (
		store   session.Store
		closeFn = func() {}
	)
	switch cfg.Session.Backend {
	case config.BackendMemory:
		store = session.NewMemoryStore()
	case config.BackendPostgres:
		pg, err := deps.PostgresStoreFactory(ctx, cfg.Session.DatabaseURL, cfg.Session.Profile)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = pg, pg.Close
	default:
		path := cfg.Session.File
		if path == "" {
			path = deps.SessionPath()
		}
		store = session.NewFileStore(path)
	}

	manager, err := session.NewManagerWithLogger(store, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := manager.Init(ctx); err != nil {
		closeFn()
		return nil, nil, oops.With("backend", cfg.Session.Backend).Wrap(err)
	}
	logger.DebugContext(ctx, "session store ready", "backend", cfg.Session.Backend)
	return manager, closeFn, nil
}

// writeMetrics exports g when metrics.textfile is set. Failures are logged.
func writeMetrics(cfg *config.Config, g prometheus.Gatherer, logger *slog.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := observability.WriteTextfile(g, cfg.Metrics.Textfile); err != nil {
		errutil.LogError(logger, "metrics export failed", err)
	}
}

// commandContext returns the command context, or Background when the command
// was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
