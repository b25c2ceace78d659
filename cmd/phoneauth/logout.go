// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session",
		Long:  `Delete the stored token, name and phone so the next run starts at sign-in.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogout(cmd, deps)
		},
	}
}

func runLogout(cmd *cobra.Command, deps *Deps) error {
	ctx := commandContext(cmd)
	cfg, err := loadConfig(cmd, deps)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	manager, closeStore, err := openSessions(ctx, cfg, logger, deps)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := manager.Clear(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}
