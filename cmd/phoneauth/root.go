// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/phoneauth/phoneauth/internal/api"
	"github.com/phoneauth/phoneauth/internal/config"
	"github.com/phoneauth/phoneauth/internal/country"
	"github.com/phoneauth/phoneauth/internal/flow"
	"github.com/phoneauth/phoneauth/internal/gate"
	"github.com/phoneauth/phoneauth/internal/lineui"
	"github.com/phoneauth/phoneauth/internal/logging"
	"github.com/phoneauth/phoneauth/internal/observability"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/theme"
	"github.com/phoneauth/phoneauth/internal/toast"
	"github.com/phoneauth/phoneauth/internal/tui"
)

// NewRootCmd creates the root command for the phoneauth CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "phoneauth",
		Short: "Sign in with a phone number and one-time passcode",
		Long: `phoneauth signs you in to the backend with your name and phone number.
A one-time passcode is sent to the phone; entering it stores a session token
so later runs go straight to the signed-in state.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLaunch(cmd, deps)
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newStatusCmd(deps))
	cmd.AddCommand(newLogoutCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newCountriesCmd(deps))

	return cmd
}

// runLaunch resolves the launch route and runs the sign-in flow when no
// session is stored.
func runLaunch(cmd *cobra.Command, deps *Deps) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd, deps)
	if err != nil {
		return err
	}

	mode := uiMode(cfg.UI.Mode, deps.IsTerminal)
	var logOut io.Writer = cmd.ErrOrStderr()
	if mode == config.UITUI {
		path := cfg.Log.File
		if path == "" {
			path = deps.LogPath()
		}
		f, err := logging.OpenFile(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	logger := newLogger(cfg, logOut)

	registry, metrics := observability.NewRegistry()
	defer writeMetrics(cfg, registry, logger)

	manager, closeStore, err := openSessions(ctx, cfg, logger, deps)
	if err != nil {
		return err
	}
	defer closeStore()

	if gate.New(manager, logger).Resolve(ctx) == gate.RouteApp {
		s, _, err := manager.Load(ctx)
		if err != nil {
			return err
		}
		printSignedIn(cmd, s)
		return nil
	}

	countries, err := country.NewList(cfg.Countries.Allowed, cfg.Countries.Default)
	if err != nil {
		return err
	}
	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithLogger(logger),
		api.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	flowOpts := []flow.Option{
		flow.WithLogger(logger),
		flow.WithMetrics(metrics),
		flow.WithDialCodePrefix(cfg.Phone.IncludeDialCode),
	}
	logger.InfoContext(ctx, "starting sign-in", "ui", mode, "base_url", client.BaseURL())

	var s session.Session
	if mode == config.UITUI {
		s, err = signInTUI(ctx, cfg, deps, client, manager, countries, flowOpts)
	} else {
		s, err = signInPlain(ctx, cmd, client, manager, countries, flowOpts)
	}
	if errors.Is(err, tui.ErrCancelled) || errors.Is(err, lineui.ErrCancelled) {
		cmd.PrintErrln("Sign-in cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	printSignedIn(cmd, s)
	return nil
}

func signInTUI(ctx context.Context, cfg *config.Config, deps *Deps, client *api.Client, manager *session.Manager,
	countries *country.List, opts []flow.Option,
) (session.Session, error) {
	feed := tui.NewFeed()
	notifier := toast.NewNotifier(feed.Publish)
	defer notifier.Close()

	ctrl, err := flow.NewController(client, manager, notifier, countries, opts...)
	if err != nil {
		return session.Session{}, err
	}
	model, err := tui.New(tui.Deps{
		Context:    ctx,
		Controller: ctrl,
		Countries:  countries,
		Toasts:     notifier,
		Feed:       feed,
		Styles:     theme.NewStyles(theme.PaletteFor(theme.Detect(cfg.UI.Theme))),
	})
	if err != nil {
		return session.Session{}, err
	}
	return deps.TUIRunner(ctx, model)
}

func signInPlain(ctx context.Context, cmd *cobra.Command, client *api.Client, manager *session.Manager,
	countries *country.List, opts []flow.Option,
) (session.Session, error) {
	out := cmd.OutOrStdout()
	ctrl, err := flow.NewController(client, manager, lineui.NewPrinter(out), countries, opts...)
	if err != nil {
		return session.Session{}, err
	}
	prompter, err := lineui.NewPrompter(ctrl, countries, cmd.InOrStdin(), out)
	if err != nil {
		return session.Session{}, err
	}
	s, err := prompter.Run(ctx)
	if err != nil && !errors.Is(err, lineui.ErrCancelled) {
		return session.Session{}, oops.Code("SIGN_IN_FAILED").Wrap(err)
	}
	return s, err
}

// uiMode resolves "auto" to tui on a terminal and plain elsewhere.
func uiMode(mode string, isTerminal func() bool) string {
	if mode != config.UIAuto {
		return mode
	}
	if isTerminal() {
		return config.UITUI
	}
	return config.UIPlain
}

func printSignedIn(cmd *cobra.Command, s session.Session) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s).\n", s.UserName, s.UserPhone)
}
