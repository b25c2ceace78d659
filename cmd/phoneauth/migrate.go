// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phoneauth/phoneauth/internal/config"
)

// newMigrateCmd creates the migrate command. Without a subcommand it runs up.
func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres session schema",
		Long: `Apply the embedded migrations for the postgres session backend.
The database URL comes from session.database_url or DATABASE_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd, deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd, deps)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateVersion(cmd, deps)
		},
	})

	return cmd
}

func openMigrator(cmd *cobra.Command, deps *Deps) (Migrator, error) {
	cfg, err := loadConfig(cmd, deps)
	if err != nil {
		return nil, err
	}
	if cfg.Session.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").
			With("field", "session.database_url").
			Errorf("session.database_url or %s is required", config.EnvDatabaseURL)
	}
	return deps.MigratorFactory(cfg.Session.DatabaseURL)
}

func runMigrateUp(cmd *cobra.Command, deps *Deps) error {
	m, err := openMigrator(cmd, deps)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Migrations completed successfully (version %d)\n", version)
	return nil
}

func runMigrateVersion(cmd *cobra.Command, deps *Deps) error {
	m, err := openMigrator(cmd, deps)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	pending, err := m.Pending()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Version: %d\n", version)
	if dirty {
		_, _ = fmt.Fprintln(out, "State: dirty (a previous migration failed part way)")
	}
	if len(pending) == 0 {
		_, _ = fmt.Fprintln(out, "Pending: none")
		return nil
	}
	ids := make([]string, len(pending))
	for i, v := range pending {
		ids[i] = fmt.Sprintf("%06d", v)
	}
	_, _ = fmt.Fprintf(out, "Pending: %s\n", strings.Join(ids, ", "))
	return nil
}
