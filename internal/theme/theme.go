// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package theme maps the terminal color scheme to the palette and lipgloss
// styles used by the interactive UI.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phoneauth/phoneauth/internal/toast"
)

// Scheme is a light or dark color scheme.
type Scheme string

// Color schemes.
const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

// Theme modes accepted in configuration.
const (
	ModeAuto  = "auto"
	ModeLight = "light"
	ModeDark  = "dark"
)

// Detect resolves mode to a scheme, asking the terminal when mode is auto.
func Detect(mode string) Scheme {
	return Resolve(mode, lipgloss.HasDarkBackground)
}

// Resolve resolves mode to a scheme, calling hasDark only for auto or an
// unrecognised mode.
func Resolve(mode string, hasDark func() bool) Scheme {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeLight:
		return SchemeLight
	case ModeDark:
		return SchemeDark
	}
	if hasDark != nil && hasDark() {
		return SchemeDark
	}
	return SchemeLight
}

// Palette is the set of colors for one scheme.
type Palette struct {
	Background       lipgloss.Color
	Text             lipgloss.Color
	Placeholder      lipgloss.Color
	InputBackground  lipgloss.Color
	Border           lipgloss.Color
	ButtonBackground lipgloss.Color
	ButtonText       lipgloss.Color
	Info             lipgloss.Color
	Error            lipgloss.Color
	Success          lipgloss.Color
}

var palettes = map[Scheme]Palette{
	SchemeDark: {
		Background:       "#181A20",
		Text:             "#FFFFFF",
		Placeholder:      "#A1A4B2",
		InputBackground:  "#23262F",
		Border:           "#31A71B",
		ButtonBackground: "#31A71B",
		ButtonText:       "#FFFFFF",
		Info:             "#1890FF",
		Error:            "#E4E4E4",
		Success:          "#52C41A",
	},
	SchemeLight: {
		Background:       "#FFFFFF",
		Text:             "#000000",
		Placeholder:      "#3C3F4A",
		InputBackground:  "#FFFFFF",
		Border:           "#31A71B",
		ButtonBackground: "#31A71B",
		ButtonText:       "#000000",
		Info:             "#1890FF",
		Error:            "#E4E4E4",
		Success:          "#52C41A",
	},
}

// PaletteFor returns the palette for s. Unknown schemes get the light palette.
func PaletteFor(s Scheme) Palette {
	if p, ok := palettes[s]; ok {
		return p
	}
	return palettes[SchemeLight]
}

// ToastColor is the banner color for a notification kind.
func ToastColor(kind toast.Kind) lipgloss.Color {
	switch toast.ParseKind(string(kind)) {
	case toast.KindError:
		return "#ED6E6E"
	case toast.KindSuccess:
		return "#9DEC76"
	default:
		return "#76B4ED"
	}
}

// Styles are the lipgloss styles for the sign-in screens.
type Styles struct {
	Title         lipgloss.Style
	Label         lipgloss.Style
	Input         lipgloss.Style
	InputFocused  lipgloss.Style
	Placeholder   lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	Link          lipgloss.Style
	OTPBox        lipgloss.Style
	OTPBoxFocused lipgloss.Style
	Help          lipgloss.Style
	Selected      lipgloss.Style
}

// NewStyles derives the screen styles from p.
func NewStyles(p Palette) Styles {
	input := lipgloss.NewStyle().
		Foreground(p.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Placeholder).
		Padding(0, 1).
		Width(32)
	box := lipgloss.NewStyle().
		Foreground(p.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Placeholder).
		Width(3).
		Align(lipgloss.Center)
	button := lipgloss.NewStyle().
		Foreground(p.ButtonText).
		Background(p.Placeholder).
		Padding(0, 3).
		MarginTop(1)

	return Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(p.Text).MarginBottom(1),
		Label:         lipgloss.NewStyle().Foreground(p.Text),
		Input:         input,
		InputFocused:  input.BorderForeground(p.Border),
		Placeholder:   lipgloss.NewStyle().Foreground(p.Placeholder),
		Button:        button,
		ButtonFocused: button.Background(p.ButtonBackground).Bold(true),
		Link:          lipgloss.NewStyle().Foreground(p.Border).Underline(true),
		OTPBox:        box,
		OTPBoxFocused: box.BorderForeground(p.Border),
		Help:          lipgloss.NewStyle().Foreground(p.Placeholder).MarginTop(1),
		Selected:      lipgloss.NewStyle().Foreground(p.Border).Bold(true),
	}
}

// ToastStyle renders a notification banner of kind.
func ToastStyle(kind toast.Kind) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ToastColor(kind)).
		Bold(true).
		Padding(0, 1)
}
