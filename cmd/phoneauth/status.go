// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phoneauth/phoneauth/internal/session"
)

// SessionStatus describes the stored session.
type SessionStatus struct {
	SignedIn bool   `json:"signed_in"`
	Backend  string `json:"backend"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

func newStatusCmd(deps *Deps) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Long:  `Show whether a session token is stored and who it belongs to. The phone number is masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg, deps)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, sc *statusConfig, deps *Deps) error {
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

	s, ok, err := manager.Load(ctx)
	if err != nil {
		return err
	}
	status := SessionStatus{SignedIn: ok, Backend: cfg.Session.Backend}
	if ok {
		status.Name = s.UserName
		status.Phone = session.MaskPhone(s.UserPhone)
	}

	var output string
	if sc.jsonOutput {
		output, err = formatStatusJSON(status)
		if err != nil {
			return err
		}
	} else {
		output = formatStatusTable(status)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status SessionStatus) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "SESSION\tBACKEND\tNAME\tPHONE")
	_, _ = fmt.Fprintln(w, "-------\t-------\t----\t-----")
	if status.SignedIn {
		_, _ = fmt.Fprintf(w, "signed in\t%s\t%s\t%s\n", status.Backend, status.Name, status.Phone)
	} else {
		_, _ = fmt.Fprintf(w, "signed out\t%s\t-\t-\n", status.Backend)
	}

	_ = w.Flush()
	return buf.String()
}

// formatStatusJSON formats the status as JSON.
func formatStatusJSON(status SessionStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", oops.Code("STATUS_FORMAT_FAILED").Wrap(err)
	}
	return string(data), nil
}
