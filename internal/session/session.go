// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package session persists the signed-in user's session as three string keys.
//
// The Store interface is the raw key-value contract; backends live in this
// package (memory, YAML file) and in session/postgres. Manager is the only
// component that reads or writes the keys. The Root Gate reads the token
// through Manager.Token, and the auth flow writes a full Session through
// Manager.Save after a successful OTP verification.
package session

import (
	"context"
	"errors"
	"strings"
)

// Persisted keys.
const (
	KeyToken     = "user_token"
	KeyUserName  = "user_name"
	KeyUserPhone = "user_phone"
)

// Keys lists every key the manager owns, in write order.
var Keys = []string{KeyToken, KeyUserName, KeyUserPhone}

// ErrNotInitialized is returned when a Manager is used before Init.
var ErrNotInitialized = errors.New("session store not initialized")

// Store is a persistent string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Initializer is implemented by stores that need preparation before use.
type Initializer interface {
	Init(ctx context.Context) error
}

// Session is the credential earned by verifying an OTP.
type Session struct {
	Token     string `json:"token"`
	UserName  string `json:"user_name"`
	UserPhone string `json:"user_phone"`
}

// Authenticated reports whether the session carries a usable token.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// MaskPhone hides all but the last three digits of a phone number.
func MaskPhone(phone string) string {
	runes := []rune(strings.TrimSpace(phone))
	if len(runes) <= 3 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-3) + string(runes[len(runes)-3:])
}
