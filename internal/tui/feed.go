// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/phoneauth/phoneauth/internal/toast"
)

// toastMsg carries a notifier change into the update loop.
type toastMsg toast.Message

// Feed forwards notifier changes to a running program. Only the latest
// undelivered message is kept.
type Feed struct {
	ch chan toast.Message
}

// NewFeed creates an empty Feed. Pass Publish as the notifier's onChange.
func NewFeed() *Feed {
	return &Feed{ch: make(chan toast.Message, 1)}
}

// Publish queues m, replacing any message not yet delivered.
func (f *Feed) Publish(m toast.Message) {
	for {
		select {
		case f.ch <- m:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return toastMsg(<-f.ch)
	}
}
