// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package flow implements the phone sign-in state machine.
//
// A Controller starts in StateCollectingIdentity, moves to StateAwaitingOTP
// once the backend has issued a passcode, and ends in StateAuthenticated
// after the verified session has been saved. Every user-visible failure is
// reported through the Notifier; no method returns a Go error for them.
//
// Network calls run without holding the controller lock, so a response that
// arrives after the user navigated back is applied to whatever state is
// current at that moment. The loading flag is advisory and does not block a
// second submission.
package flow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/internal/api"
	"github.com/phoneauth/phoneauth/internal/country"
	"github.com/phoneauth/phoneauth/internal/observability"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/toast"
	"github.com/phoneauth/phoneauth/pkg/errutil"
)

// User-facing notification texts.
const (
	MsgMissingIdentity    = "Please enter both name and phone number."
	MsgUnsupportedCountry = "Please select a supported country."
	MsgOTPSent            = "Please verify OTP sent to your phone."
	MsgMissingOTP         = "Please enter the OTP."
	MsgNetworkError       = "Network error. Please try again."
	MsgInvalidResponse    = "Invalid response from server."
	MsgSaveFailed         = "Failed to save authentication data. Please try again."
)

// State is a position in the sign-in flow.
type State int

// Flow states.
const (
	StateCollectingIdentity State = iota
	StateAwaitingOTP
	StateAuthenticated
)

// String returns the snake_case state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateCollectingIdentity:
		return "collecting_identity"
	case StateAwaitingOTP:
		return "awaiting_otp"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Backend is the subset of the API client the flow needs.
type Backend interface {
	RequestOTP(ctx context.Context, req api.RequestOTPRequest) api.Result[api.RequestOTPResponse]
	VerifyOTP(ctx context.Context, userID int64, req api.VerifyOTPRequest) api.Result[api.VerifyOTPResponse]
}

// SessionWriter persists a verified session.
type SessionWriter interface {
	Save(ctx context.Context, s session.Session) error
}

// Notifier displays a transient message.
type Notifier interface {
	Show(kind toast.Kind, text string)
}

// DialCodes resolves a dial code against the allow-list.
type DialCodes interface {
	ByDialCode(dial string) (country.Country, bool)
}

// Identity is the name and phone the user entered.
type Identity struct {
	Name     string
	Phone    string
	DialCode string
}

// Snapshot is a copy of the controller's state for rendering.
type Snapshot struct {
	State     State
	Identity  Identity
	UserID    int64
	HasUserID bool
	OTP       OTPBoxes
	Focus     int
	Loading   bool
	Session   session.Session
}

// Outcome reports what a submission did.
type Outcome struct {
	State   State
	Kind    toast.Kind
	Message string
}

// Controller drives the sign-in flow.
type Controller struct {
	backend         Backend
	sessions        SessionWriter
	notifier        Notifier
	dialCodes       DialCodes
	logger          *slog.Logger
	metrics         *observability.Metrics
	includeDialCode bool
	onAuthenticated func(session.Session)

	mu        sync.Mutex
	state     State
	identity  Identity
	userID    int64
	hasUserID bool
	otp       OTPBoxes
	focus     int
	inflight  int
	session   session.Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics records transitions and notifications.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithDialCodePrefix sends dialCode+phone as phone_number instead of the
// bare phone.
func WithDialCodePrefix(enabled bool) Option {
	return func(c *Controller) {
		c.includeDialCode = enabled
	}
}

// WithOnAuthenticated registers a callback run after the session is saved.
func WithOnAuthenticated(fn func(session.Session)) Option {
	return func(c *Controller) {
		c.onAuthenticated = fn
	}
}

// NewController creates a Controller in StateCollectingIdentity.
// Returns an error if any required dependency is nil.
func NewController(backend Backend, sessions SessionWriter, notifier Notifier, dialCodes DialCodes, opts ...Option) (*Controller, error) {
	if backend == nil {
		return nil, oops.Errorf("backend is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session writer is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if dialCodes == nil {
		return nil, oops.Errorf("dial code list is required")
	}
	c := &Controller{
		backend:   backend,
		sessions:  sessions,
		notifier:  notifier,
		dialCodes: dialCodes,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:     c.state,
		Identity:  c.identity,
		UserID:    c.userID,
		HasUserID: c.hasUserID,
		OTP:       c.otp,
		Focus:     c.focus,
		Loading:   c.inflight > 0,
		Session:   c.session,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// SubmitIdentity asks the backend to send a passcode to phone.
func (c *Controller) SubmitIdentity(ctx context.Context, name, phone, dialCode string) Outcome {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	dialCode = strings.TrimSpace(dialCode)

	c.mu.Lock()
	c.identity = Identity{Name: name, Phone: phone, DialCode: dialCode}
	c.mu.Unlock()

	if name == "" || phone == "" {
		return c.fail(MsgMissingIdentity)
	}
	if _, ok := c.dialCodes.ByDialCode(dialCode); !ok {
		c.logger.DebugContext(ctx, "dial code not allowed", "dial_code", dialCode)
		return c.fail(MsgUnsupportedCountry)
	}

	phoneNumber := phone
	if c.includeDialCode {
		phoneNumber = dialCode + phone
	}

	c.logger.InfoContext(ctx, "requesting otp",
		"phone", session.MaskPhone(phoneNumber),
		"dial_code", dialCode,
	)

	c.begin()
	res := c.backend.RequestOTP(ctx, api.RequestOTPRequest{Name: name, PhoneNumber: phoneNumber})
	c.end()

	switch res.Kind {
	case api.KindOK:
		if res.Payload.UserID == nil {
			c.logger.WarnContext(ctx, "request otp response missing user_id")
			return c.fail(MsgInvalidResponse)
		}
		msg := res.Payload.Message
		if msg == "" {
			msg = MsgOTPSent
		}
		c.mu.Lock()
		c.userID = *res.Payload.UserID
		c.hasUserID = true
		c.otp = OTPBoxes{}
		c.focus = 0
		c.transitionLocked(ctx, StateAwaitingOTP)
		c.mu.Unlock()
		return c.notify(toast.KindInfo, msg)
	default:
		return c.failResult(ctx, "request otp failed", res.Kind, res.Message, res.Err)
	}
}

// SubmitOTP verifies code for the pending user and saves the session.
// A code that is empty, longer than OTPLength or not all ASCII digits is
// rejected without a network call.
func (c *Controller) SubmitOTP(ctx context.Context, code string) Outcome {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	userID, hasUserID := c.userID, c.hasUserID
	c.mu.Unlock()

	if code == "" || len(code) > OTPLength || !isDigits(code) || !hasUserID {
		return c.fail(MsgMissingOTP)
	}

	c.logger.InfoContext(ctx, "verifying otp", "user_id", userID)

	c.begin()
	res := c.backend.VerifyOTP(ctx, userID, api.VerifyOTPRequest{OTP: code})
	c.end()

	switch res.Kind {
	case api.KindOK:
		user := res.Payload.User
		if res.Payload.Token == "" || user == nil || user.Name == "" || user.PhoneNumber == "" {
			c.logger.WarnContext(ctx, "verify otp response missing token or user fields",
				"user_id", userID,
				"has_token", res.Payload.Token != "",
				"has_user", user != nil,
				"has_name", user != nil && user.Name != "",
				"has_phone", user != nil && user.PhoneNumber != "",
			)
			return c.fail(MsgInvalidResponse)
		}
		s := session.Session{
			Token:     res.Payload.Token,
			UserName:  user.Name,
			UserPhone: user.PhoneNumber,
		}
		if err := c.sessions.Save(ctx, s); err != nil {
			errutil.LogErrorContext(ctx, c.logger, "failed to save session", err)
			if c.metrics != nil {
				c.metrics.SessionWriteFailure.Inc()
			}
			return c.fail(MsgSaveFailed)
		}
		c.mu.Lock()
		c.session = s
		c.hasUserID = false
		c.userID = 0
		c.otp = OTPBoxes{}
		c.transitionLocked(ctx, StateAuthenticated)
		c.mu.Unlock()

		if c.onAuthenticated != nil {
			c.onAuthenticated(s)
		}
		return Outcome{State: StateAuthenticated, Kind: toast.KindSuccess}
	default:
		return c.failResult(ctx, "verify otp failed", res.Kind, res.Message, res.Err)
	}
}

// ReturnToIdentity discards the pending verification and passcode and goes
// back to identity entry. The entered name and phone are kept.
func (c *Controller) ReturnToIdentity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.otp = OTPBoxes{}
	c.focus = 0
	c.userID = 0
	c.hasUserID = false
	if c.state == StateAwaitingOTP {
		c.transitionLocked(context.Background(), StateCollectingIdentity)
	}
}

// EnterDigit applies val to box i and returns the box to focus next.
// Non-digit input leaves every box unchanged.
func (c *Controller) EnterDigit(i int, val string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, focus := c.otp.enter(i, val)
	c.focus = focus
	return focus
}

// ClearOTP empties every box and focuses the first.
func (c *Controller) ClearOTP() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.otp = OTPBoxes{}
	c.focus = 0
}

// Backspace handles a backspace on box i and returns the box to focus next.
func (c *Controller) Backspace(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, focus := c.otp.backspace(i)
	c.focus = focus
	return focus
}

// OTP returns the assembled passcode.
func (c *Controller) OTP() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.otp.Code()
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}

func (c *Controller) transitionLocked(ctx context.Context, to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.logger.DebugContext(ctx, "flow transition", "from", from.String(), "to", to.String())
	if c.metrics != nil {
		c.metrics.FlowTransitions.WithLabelValues(from.String(), to.String()).Inc()
	}
}

func (c *Controller) failResult(ctx context.Context, logMsg string, kind api.Kind, message string, err error) Outcome {
	if kind == api.KindServerError {
		c.logger.InfoContext(ctx, logMsg, "outcome", kind.String(), "message", message)
		return c.fail(message)
	}
	if err != nil {
		errutil.LogErrorContext(ctx, c.logger, logMsg, err)
	}
	return c.fail(MsgNetworkError)
}

func (c *Controller) fail(text string) Outcome {
	return c.notify(toast.KindError, text)
}

func (c *Controller) notify(kind toast.Kind, text string) Outcome {
	if c.metrics != nil {
		c.metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()
	}
	c.notifier.Show(kind, text)
	return Outcome{State: c.State(), Kind: kind, Message: text}
}
