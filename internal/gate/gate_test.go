// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package gate_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/phoneauth/phoneauth/internal/gate"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func TestGate_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		token string
		err   error
		want  gate.Route
	}{
		{name: "token present", token: "tok1", want: gate.RouteApp},
		{name: "no token", token: "", want: gate.RouteAuth},
		{name: "whitespace token", token: "  \t", want: gate.RouteAuth},
		{name: "read error", err: errors.New("permission denied"), want: gate.RouteAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &mockReader{}
			reader.On("Token", mock.Anything).Return(tt.token, tt.err).Once()

			g := gate.New(reader, nil)
			assert.Equal(t, tt.want, g.Resolve(context.Background()))
			reader.AssertExpectations(t)
		})
	}
}

func TestGate_ResolvesOnce(t *testing.T) {
	reader := &mockReader{}
	reader.On("Token", mock.Anything).Return("tok1", nil).Once()

	g := gate.New(reader, nil)
	ctx := context.Background()
	for range 3 {
		assert.Equal(t, gate.RouteApp, g.Resolve(ctx))
	}
	reader.AssertNumberOfCalls(t, "Token", 1)
}

func TestGate_LogsReadError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	reader := &mockReader{}
	reader.On("Token", mock.Anything).Return("", errors.New("permission denied"))

	gate.New(reader, logger).Resolve(context.Background())

	assert.Contains(t, buf.String(), "failed to read session token")
	assert.Contains(t, buf.String(), `"route":"auth"`)
}

func TestGate_NilReaderRoutesToAuth(t *testing.T) {
	assert.Equal(t, gate.RouteAuth, gate.New(nil, nil).Resolve(context.Background()))
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, "app", gate.RouteApp.String())
	assert.Equal(t, "auth", gate.RouteAuth.String())
}
