// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFocus(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		action Action
		want   int
	}{
		{"digit advances", 0, ActionDigit, 1},
		{"digit in middle advances", 3, ActionDigit, 4},
		{"digit in last box stays", 5, ActionDigit, 5},
		{"backspace on empty moves back", 3, ActionBackspaceEmpty, 2},
		{"backspace on empty first box stays", 0, ActionBackspaceEmpty, 0},
		{"clear stays", 2, ActionClear, 2},
		{"reject stays", 4, ActionReject, 4},
		{"negative index clamps", -3, ActionReject, 0},
		{"large index clamps", 9, ActionDigit, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextFocus(tt.index, tt.action))
		})
	}
}

func TestNextFocus_IndependentOfContents(t *testing.T) {
	fills := []OTPBoxes{{}, {"1", "2", "3", "4", "5", "6"}, {"", "9", "", "8", "", ""}}
	for _, fill := range fills {
		for i := range OTPLength - 1 {
			b := fill
			_, focus := b.enter(i, "7")
			assert.Equal(t, i+1, focus, "digit at %d with %v", i, fill)
		}
		for i := 1; i < OTPLength; i++ {
			b := fill
			b[i] = ""
			_, focus := b.backspace(i)
			assert.Equal(t, i-1, focus, "backspace at %d with %v", i, fill)
		}
	}
}

func TestOTPBoxes_RejectsNonDigits(t *testing.T) {
	inputs := []string{"a", "1a", " ", "-", "٣", "1.0", "\t"}
	for _, in := range inputs {
		b := OTPBoxes{"1", "2", "", "", "", ""}
		before := b
		action, focus := b.enter(2, in)
		assert.Equal(t, ActionReject, action, "input %q", in)
		assert.Equal(t, 2, focus)
		assert.Equal(t, before, b, "input %q must not change boxes", in)
		assert.Equal(t, "12", b.Code())
	}
}

func TestOTPBoxes_Enter(t *testing.T) {
	var b OTPBoxes
	for i, d := range []string{"1", "3", "5", "7", "9", "0"} {
		action, _ := b.enter(i, d)
		assert.Equal(t, ActionDigit, action)
	}
	assert.Equal(t, "135790", b.Code())

	action, focus := b.enter(3, "")
	assert.Equal(t, ActionClear, action)
	assert.Equal(t, 3, focus)
	assert.Equal(t, "13590", b.Code())
}

func TestOTPBoxes_PasteFillsFollowingBoxes(t *testing.T) {
	var b OTPBoxes
	_, focus := b.enter(0, "123456789")
	assert.Equal(t, "123456", b.Code())
	assert.Equal(t, 5, focus)

	b = OTPBoxes{}
	_, focus = b.enter(2, "45")
	assert.Equal(t, OTPBoxes{"", "", "4", "5", "", ""}, b)
	assert.Equal(t, 4, focus)
}

func TestOTPBoxes_Backspace(t *testing.T) {
	b := OTPBoxes{"1", "2", "3", "", "", ""}

	action, focus := b.backspace(2)
	assert.Equal(t, ActionClear, action)
	assert.Equal(t, 2, focus)
	assert.Equal(t, "12", b.Code())

	action, focus = b.backspace(2)
	assert.Equal(t, ActionBackspaceEmpty, action)
	assert.Equal(t, 1, focus)
	assert.Equal(t, "12", b.Code(), "backspace on an empty box does not clear the previous one")
}

func TestOTPBoxes_CodeNeverExceedsLength(t *testing.T) {
	b := OTPBoxes{"12", "34", "56", "78", "", ""}
	assert.Len(t, b.Code(), OTPLength)
}
