// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package theme_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/phoneauth/phoneauth/internal/theme"
	"github.com/phoneauth/phoneauth/internal/toast"
)

func TestResolve(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }
	called := false
	probe := func() bool { called = true; return true }

	assert.Equal(t, theme.SchemeLight, theme.Resolve("light", probe))
	assert.Equal(t, theme.SchemeDark, theme.Resolve(" DARK ", probe))
	assert.False(t, called, "explicit modes must not probe the terminal")

	assert.Equal(t, theme.SchemeDark, theme.Resolve("auto", dark))
	assert.Equal(t, theme.SchemeLight, theme.Resolve("auto", light))
	assert.Equal(t, theme.SchemeLight, theme.Resolve("", nil))
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#181A20"), theme.PaletteFor(theme.SchemeDark).Background)
	assert.Equal(t, lipgloss.Color("#000000"), theme.PaletteFor(theme.SchemeLight).Text)
	assert.Equal(t, theme.PaletteFor(theme.SchemeLight), theme.PaletteFor(theme.Scheme("sepia")))
}

func TestToastColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#ED6E6E"), theme.ToastColor(toast.KindError))
	assert.Equal(t, lipgloss.Color("#76B4ED"), theme.ToastColor(toast.KindInfo))
	assert.Equal(t, lipgloss.Color("#9DEC76"), theme.ToastColor(toast.KindSuccess))
	assert.Equal(t, theme.ToastColor(toast.KindInfo), theme.ToastColor(toast.Kind("other")))
}

func TestNewStyles_FocusUsesBorderColor(t *testing.T) {
	p := theme.PaletteFor(theme.SchemeDark)
	s := theme.NewStyles(p)

	assert.Equal(t, lipgloss.TerminalColor(p.Border), s.InputFocused.GetBorderTopForeground())
	assert.Equal(t, lipgloss.TerminalColor(p.Placeholder), s.Input.GetBorderTopForeground())
	assert.Equal(t, lipgloss.TerminalColor(p.ButtonBackground), s.ButtonFocused.GetBackground())
}
