// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package flow

import "strings"

// OTPLength is the number of passcode boxes.
const OTPLength = 6

// Action is an input event on an OTP box.
type Action int

// OTP box actions.
const (
	// ActionDigit is an accepted digit typed into a box.
	ActionDigit Action = iota
	// ActionClear is a box emptied by editing.
	ActionClear
	// ActionBackspaceEmpty is a backspace pressed on an already empty box.
	ActionBackspaceEmpty
	// ActionReject is input refused because it was not a digit.
	ActionReject
)

// NextFocus returns the box that should hold focus after action happened on
// box index. The result is always within [0, OTPLength).
func NextFocus(index int, action Action) int {
	index = clampFocus(index)
	switch action {
	case ActionDigit:
		if index < OTPLength-1 {
			return index + 1
		}
	case ActionBackspaceEmpty:
		if index > 0 {
			return index - 1
		}
	}
	return index
}

func clampFocus(i int) int {
	if i < 0 {
		return 0
	}
	if i >= OTPLength {
		return OTPLength - 1
	}
	return i
}

// OTPBoxes is the per-digit passcode input.
type OTPBoxes [OTPLength]string

// Code concatenates the boxes, truncated to OTPLength characters.
func (b OTPBoxes) Code() string {
	code := strings.Join(b[:], "")
	if len(code) > OTPLength {
		code = code[:OTPLength]
	}
	return code
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// enter applies val to box i and returns the resulting action and focus. A
// multi-digit val fills consecutive boxes starting at i.
func (b *OTPBoxes) enter(i int, val string) (Action, int) {
	i = clampFocus(i)
	if !isDigits(val) {
		return ActionReject, i
	}
	if val == "" {
		b[i] = ""
		return ActionClear, NextFocus(i, ActionClear)
	}
	last := i
	for n, r := range val {
		pos := i + n
		if pos >= OTPLength {
			break
		}
		b[pos] = string(r)
		last = pos
	}
	return ActionDigit, NextFocus(last, ActionDigit)
}

// backspace clears box i, or reports a backspace on an empty box.
func (b *OTPBoxes) backspace(i int) (Action, int) {
	i = clampFocus(i)
	if b[i] != "" {
		b[i] = ""
		return ActionClear, i
	}
	return ActionBackspaceEmpty, NextFocus(i, ActionBackspaceEmpty)
}
