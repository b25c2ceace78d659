// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package tui is the interactive terminal presentation of the sign-in flow.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/internal/country"
	"github.com/phoneauth/phoneauth/internal/flow"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/theme"
	"github.com/phoneauth/phoneauth/internal/toast"
)

// MaxPhoneLength bounds the phone field.
const MaxPhoneLength = 15

type identityField int

const (
	fieldName identityField = iota
	fieldCountry
	fieldPhone
	fieldContinue
	identityFieldCount
)

// OTP screen focus positions after the six boxes.
const (
	focusVerify = flow.OTPLength + iota
	focusReturn
	otpFocusCount
)

type identityResultMsg flow.Outcome

type otpResultMsg flow.Outcome

// Dismisser hides the current notification.
type Dismisser interface {
	Dismiss()
}

// Deps are the collaborators of a Model.
type Deps struct {
	Context    context.Context
	Controller *flow.Controller
	Countries  *country.List
	Toasts     Dismisser
	Feed       *Feed
	Styles     theme.Styles
}

// Model is the bubbletea model for the sign-in screens.
type Model struct {
	ctx       context.Context
	ctrl      *flow.Controller
	countries []country.Country
	toasts    Dismisser
	feed      *Feed
	styles    theme.Styles

	name          string
	phone         string
	selected      int
	identityFocus identityField
	pickerOpen    bool
	pickerIndex   int

	otpFocus int

	toast   toast.Message
	loading bool

	session   session.Session
	done      bool
	cancelled bool
	width     int
}

// New creates a Model.
func New(deps Deps) (Model, error) {
	if deps.Controller == nil {
		return Model{}, oops.Errorf("controller is required")
	}
	if deps.Countries == nil {
		return Model{}, oops.Errorf("country list is required")
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:       ctx,
		ctrl:      deps.Controller,
		countries: deps.Countries.Allowed(),
		toasts:    deps.Toasts,
		feed:      deps.Feed,
		styles:    deps.Styles,
	}
	def := deps.Countries.Default()
	for i, c := range m.countries {
		if c.Code == def.Code {
			m.selected = i
		}
	}
	snap := deps.Controller.Snapshot()
	m.name = snap.Identity.Name
	m.phone = snap.Identity.Phone
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return m.feed.wait()
}

// Result returns the saved session once the flow authenticated.
func (m Model) Result() (session.Session, bool) {
	return m.session, m.done
}

// Cancelled reports whether the user quit before signing in.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = t.Width
		return m, nil

	case toastMsg:
		m.toast = toast.Message(t)
		if m.feed == nil {
			return m, nil
		}
		return m, m.feed.wait()

	case identityResultMsg:
		m.loading = m.ctrl.Loading()
		if t.State == flow.StateAwaitingOTP {
			m.otpFocus = 0
		}
		return m, nil

	case otpResultMsg:
		m.loading = m.ctrl.Loading()
		if t.State == flow.StateAuthenticated {
			m.session = m.ctrl.Snapshot().Session
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if t.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}
		if t.Type == tea.KeyEsc && m.toast.Visible && !m.pickerOpen {
			m.toast.Visible = false
			if m.toasts != nil {
				m.toasts.Dismiss()
			}
			return m, nil
		}
		switch m.ctrl.State() {
		case flow.StateAwaitingOTP:
			return m.updateOTP(t)
		case flow.StateCollectingIdentity:
			if m.pickerOpen {
				return m.updatePicker(t)
			}
			return m.updateIdentity(t)
		}
	}
	return m, nil
}

func (m Model) updateIdentity(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyTab, tea.KeyDown:
		m.identityFocus = (m.identityFocus + 1) % identityFieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		m.identityFocus = (m.identityFocus + identityFieldCount - 1) % identityFieldCount
	case tea.KeyEnter:
		switch m.identityFocus {
		case fieldName:
			m.identityFocus = fieldCountry
		case fieldCountry:
			m.pickerOpen = true
			m.pickerIndex = m.selected
		default:
			return m.submitIdentity()
		}
	case tea.KeyBackspace:
		switch m.identityFocus {
		case fieldName:
			m.name = dropLast(m.name)
		case fieldPhone:
			m.phone = dropLast(m.phone)
		}
	case tea.KeySpace:
		if m.identityFocus == fieldName {
			m.name += " "
		}
	case tea.KeyRunes:
		switch m.identityFocus {
		case fieldName:
			m.name += string(k.Runes)
		case fieldPhone:
			for _, r := range k.Runes {
				if r >= '0' && r <= '9' && len(m.phone) < MaxPhoneLength {
					m.phone += string(r)
				}
			}
		}
	}
	return m, nil
}

func (m Model) updatePicker(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.pickerIndex < len(m.countries)-1 {
			m.pickerIndex++
		}
	case tea.KeyEnter:
		m.selected = m.pickerIndex
		m.pickerOpen = false
		m.identityFocus = fieldPhone
	case tea.KeyEsc:
		m.pickerOpen = false
	}
	return m, nil
}

func (m Model) updateOTP(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyTab:
		m.otpFocus = (m.otpFocus + 1) % otpFocusCount
	case tea.KeyShiftTab:
		m.otpFocus = (m.otpFocus + otpFocusCount - 1) % otpFocusCount
	case tea.KeyLeft:
		if m.otpFocus > 0 && m.otpFocus < flow.OTPLength {
			m.otpFocus--
		}
	case tea.KeyRight:
		if m.otpFocus < flow.OTPLength-1 {
			m.otpFocus++
		}
	case tea.KeyBackspace:
		if m.otpFocus < flow.OTPLength {
			m.otpFocus = m.ctrl.Backspace(m.otpFocus)
		}
	case tea.KeyRunes:
		if m.otpFocus < flow.OTPLength {
			m.otpFocus = m.ctrl.EnterDigit(m.otpFocus, string(k.Runes))
		}
	case tea.KeyEnter:
		if m.otpFocus == focusReturn {
			m.ctrl.ReturnToIdentity()
			m.identityFocus = fieldName
			m.otpFocus = 0
			return m, nil
		}
		return m.submitOTP()
	}
	return m, nil
}

func (m Model) submitIdentity() (tea.Model, tea.Cmd) {
	m.loading = true
	ctx, ctrl := m.ctx, m.ctrl
	name, phone, dial := m.name, m.phone, m.dialCode()
	return m, func() tea.Msg {
		return identityResultMsg(ctrl.SubmitIdentity(ctx, name, phone, dial))
	}
}

func (m Model) submitOTP() (tea.Model, tea.Cmd) {
	m.loading = true
	ctx, ctrl := m.ctx, m.ctrl
	code := ctrl.OTP()
	return m, func() tea.Msg {
		return otpResultMsg(ctrl.SubmitOTP(ctx, code))
	}
}

func (m Model) dialCode() string {
	if m.selected < 0 || m.selected >= len(m.countries) {
		return ""
	}
	return m.countries[m.selected].DialCode
}

func dropLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	if m.toast.Visible {
		b.WriteString(theme.ToastStyle(m.toast.Kind).Render(m.toast.Text + "  ×"))
		b.WriteString("\n\n")
	}
	switch m.ctrl.State() {
	case flow.StateAwaitingOTP:
		b.WriteString(m.viewOTP())
	case flow.StateAuthenticated:
		b.WriteString(m.styles.Title.Render("Signed in"))
	default:
		if m.pickerOpen {
			b.WriteString(m.viewPicker())
		} else {
			b.WriteString(m.viewIdentity())
		}
	}
	return b.String()
}

func (m Model) viewIdentity() string {
	s := m.styles
	input := func(f identityField, value, placeholder string) string {
		style := s.Input
		if m.identityFocus == f {
			style = s.InputFocused
		}
		if value == "" {
			return style.Render(s.Placeholder.Render(placeholder))
		}
		return style.Render(value)
	}

	countryLabel := "?"
	if m.selected < len(m.countries) {
		countryLabel = m.countries[m.selected].Label()
	}
	countryStyle := s.Input.Width(14)
	if m.identityFocus == fieldCountry {
		countryStyle = s.InputFocused.Width(14)
	}

	rows := []string{
		s.Title.Render("Enter your Details"),
		s.Label.Render("Name"),
		input(fieldName, m.name, "Enter your name"),
		s.Label.Render("Phone number"),
		lipgloss.JoinHorizontal(lipgloss.Center,
			countryStyle.Render(countryLabel+" ▾"),
			input(fieldPhone, m.phone, "Phone number"),
		),
		m.button("Continue", m.identityFocus == fieldContinue),
		s.Help.Render("tab: next field • enter: select • esc: dismiss • ctrl+c: quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewPicker() string {
	s := m.styles
	rows := []string{s.Title.Render("Select country")}
	for i, c := range m.countries {
		line := c.Flag + " " + c.Name + " (" + c.DialCode + ")"
		if i == m.pickerIndex {
			rows = append(rows, s.Selected.Render("› "+line))
		} else {
			rows = append(rows, "  "+s.Label.Render(line))
		}
	}
	rows = append(rows, s.Help.Render("↑/↓: move • enter: choose • esc: close"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewOTP() string {
	s := m.styles
	snap := m.ctrl.Snapshot()

	boxes := make([]string, flow.OTPLength)
	for i, d := range snap.OTP {
		style := s.OTPBox
		if i == m.otpFocus {
			style = s.OTPBoxFocused
		}
		if d == "" {
			d = " "
		}
		boxes[i] = style.Render(d)
	}

	link := "← Return to enter details"
	if m.otpFocus == focusReturn {
		link = s.Selected.Render(link)
	} else {
		link = s.Link.Render(link)
	}

	rows := []string{
		link,
		s.Title.Render("Enter OTP"),
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
		m.button("Verify", m.otpFocus == focusVerify),
		s.Help.Render("digits: enter code • tab: next • enter: verify • ctrl+c: quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) button(label string, focused bool) string {
	if m.loading {
		label = "Please wait…"
	}
	if focused {
		return m.styles.ButtonFocused.Render(label)
	}
	return m.styles.Button.Render(label)
}
