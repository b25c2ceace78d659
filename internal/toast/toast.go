// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package toast shows one transient notification at a time.
//
// A shown message stays visible for the notifier's duration unless it is
// replaced or dismissed first. The most recent Show always wins: timers
// armed by earlier calls are ignored once superseded.
package toast

import (
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// ParseKind maps s to a Kind. Unknown values become KindInfo.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindError, KindSuccess:
		return Kind(s)
	default:
		return KindInfo
	}
}

// DefaultDuration is how long a message stays visible.
const DefaultDuration = 2000 * time.Millisecond

// Message is the notifier's current state.
type Message struct {
	Kind    Kind
	Text    string
	Visible bool
}

// Notifier holds at most one visible message.
type Notifier struct {
	mu       sync.Mutex
	current  Message
	gen      uint64
	timer    *time.Timer
	duration time.Duration
	onChange func(Message)
}

// NewNotifier creates a Notifier with DefaultDuration. onChange, if non-nil,
// is called after every change of state, including auto-dismissal, from the
// goroutine that caused it.
func NewNotifier(onChange func(Message)) *Notifier {
	return NewNotifierWithDuration(DefaultDuration, onChange)
}

// NewNotifierWithDuration creates a Notifier with a custom visibility window.
func NewNotifierWithDuration(d time.Duration, onChange func(Message)) *Notifier {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Notifier{duration: d, onChange: onChange}
}

// Show makes text visible with kind and restarts the dismissal timer.
func (n *Notifier) Show(kind Kind, text string) {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	gen := n.gen
	n.current = Message{Kind: ParseKind(string(kind)), Text: text, Visible: true}
	msg := n.current
	n.timer = time.AfterFunc(n.duration, func() { n.expire(gen) })
	n.mu.Unlock()

	n.notify(msg)
}

// Dismiss hides the current message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	wasVisible := n.current.Visible
	n.current.Visible = false
	msg := n.current
	n.mu.Unlock()

	if wasVisible {
		n.notify(msg)
	}
}

// Current returns the notifier's state.
func (n *Notifier) Current() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Close stops any pending timer without notifying.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.gen++
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || !n.current.Visible {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.current.Visible = false
	msg := n.current
	n.mu.Unlock()

	n.notify(msg)
}

func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) notify(msg Message) {
	if n.onChange != nil {
		n.onChange(msg)
	}
}
