// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/internal/session"
)

// ErrCancelled is returned when the user quits before signing in.
var ErrCancelled = errors.New("sign-in cancelled")

// Run shows m until the flow authenticates or the user quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (session.Session, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return session.Session{}, oops.Code("TUI_FAILED").Wrap(err)
	}
	fm, ok := final.(Model)
	if !ok {
		return session.Session{}, oops.Code("TUI_FAILED").Errorf("unexpected final model %T", final)
	}
	s, done := fm.Result()
	if !done {
		return session.Session{}, ErrCancelled
	}
	return s, nil
}
