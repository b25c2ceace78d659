// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package gate decides at startup whether the user is already signed in.
package gate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/phoneauth/phoneauth/pkg/errutil"
)

// Route is the surface to show at launch.
type Route int

// Launch routes.
const (
	// RouteAuth shows the sign-in flow.
	RouteAuth Route = iota
	// RouteApp shows the signed-in application.
	RouteApp
)

// String returns the route name.
func (r Route) String() string {
	if r == RouteApp {
		return "app"
	}
	return "auth"
}

// TokenReader reads the stored session token.
type TokenReader interface {
	Token(ctx context.Context) (string, error)
}

// Gate reads the token once per process and caches the route.
type Gate struct {
	reader TokenReader
	logger *slog.Logger

	once  sync.Once
	route Route
}

// New creates a Gate. A nil logger discards output.
func New(reader TokenReader, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{reader: reader, logger: logger}
}

// Resolve returns the launch route. Only the first call reads the store;
// later calls return the same route. A read error routes to sign-in.
func (g *Gate) Resolve(ctx context.Context) Route {
	g.once.Do(func() {
		g.route = g.resolve(ctx)
		g.logger.InfoContext(ctx, "launch route resolved", "route", g.route.String())
	})
	return g.route
}

func (g *Gate) resolve(ctx context.Context) Route {
	if g.reader == nil {
		return RouteAuth
	}
	token, err := g.reader.Token(ctx)
	if err != nil {
		errutil.LogErrorContext(ctx, g.logger, "failed to read session token", err)
		return RouteAuth
	}
	if strings.TrimSpace(token) == "" {
		return RouteAuth
	}
	return RouteApp
}
