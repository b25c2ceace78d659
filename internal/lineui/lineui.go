// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package lineui runs the sign-in flow as plain line prompts, for pipes and
// terminals without cursor control.
package lineui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/internal/country"
	"github.com/phoneauth/phoneauth/internal/flow"
	"github.com/phoneauth/phoneauth/internal/session"
	"github.com/phoneauth/phoneauth/internal/toast"
)

// BackCommand at the OTP prompt returns to identity entry.
const BackCommand = "back"

// ErrCancelled is returned when input ends before sign-in completes.
var ErrCancelled = errors.New("sign-in cancelled")

// Printer is a flow notifier that writes each message as one line.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Show implements flow.Notifier.
func (p *Printer) Show(kind toast.Kind, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "[%s] %s\n", toast.ParseKind(string(kind)), text)
}

// Prompter asks for identity and passcode on a reader/writer pair.
type Prompter struct {
	ctrl      *flow.Controller
	countries *country.List
	in        *bufio.Scanner
	out       io.Writer
}

// NewPrompter creates a Prompter.
func NewPrompter(ctrl *flow.Controller, countries *country.List, in io.Reader, out io.Writer) (*Prompter, error) {
	if ctrl == nil {
		return nil, oops.Errorf("controller is required")
	}
	if countries == nil {
		return nil, oops.Errorf("country list is required")
	}
	if in == nil || out == nil {
		return nil, oops.Errorf("input and output are required")
	}
	return &Prompter{ctrl: ctrl, countries: countries, in: bufio.NewScanner(in), out: out}, nil
}

// Run prompts until the flow authenticates, input ends, or ctx is done.
func (p *Prompter) Run(ctx context.Context) (session.Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return session.Session{}, err
		}
		switch p.ctrl.State() {
		case flow.StateAuthenticated:
			return p.ctrl.Snapshot().Session, nil
		case flow.StateAwaitingOTP:
			if err := p.otp(ctx); err != nil {
				return session.Session{}, err
			}
		default:
			if err := p.identity(ctx); err != nil {
				return session.Session{}, err
			}
		}
	}
}

func (p *Prompter) identity(ctx context.Context) error {
	prev := p.ctrl.Snapshot().Identity
	p.printf("\nEnter your Details\n")

	name, err := p.ask("Name", prev.Name)
	if err != nil {
		return err
	}

	c := p.countries.Default()
	if prev.DialCode != "" {
		if found, ok := p.countries.ByDialCode(prev.DialCode); ok {
			c = found
		}
	}
	if allowed := p.countries.Allowed(); len(allowed) > 1 {
		codes := make([]string, len(allowed))
		for i, a := range allowed {
			codes[i] = a.Code
		}
		answer, err := p.ask("Country ("+strings.Join(codes, ", ")+")", c.Code)
		if err != nil {
			return err
		}
		if found, ok := p.countries.Lookup(answer); ok {
			c = found
		} else {
			// An unknown code reaches the controller, which rejects it.
			c = country.Country{Code: answer}
		}
	}

	phone, err := p.ask("Phone number "+c.Label(), prev.Phone)
	if err != nil {
		return err
	}

	p.ctrl.SubmitIdentity(ctx, name, phone, c.DialCode)
	return nil
}

func (p *Prompter) otp(ctx context.Context) error {
	p.printf("\nEnter OTP (type %q to change your details)\n", BackCommand)
	code, err := p.ask("OTP", "")
	if err != nil {
		return err
	}
	if strings.EqualFold(code, BackCommand) {
		p.ctrl.ReturnToIdentity()
		return nil
	}
	p.ctrl.ClearOTP()
	p.ctrl.EnterDigit(0, code)
	p.ctrl.SubmitOTP(ctx, p.ctrl.OTP())
	return nil
}

// ask prints a prompt and reads one trimmed line. An empty answer keeps def.
func (p *Prompter) ask(label, def string) (string, error) {
	if def != "" {
		p.printf("%s [%s]: ", label, def)
	} else {
		p.printf("%s: ", label)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", oops.Code("INPUT_READ_FAILED").Wrap(err)
		}
		return "", ErrCancelled
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == "" {
		answer = def
	}
	return answer, nil
}

func (p *Prompter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
