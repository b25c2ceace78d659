// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated home for one CLI test.
type testEnv struct {
	dir  string
	env  map[string]string
	deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{dir: t.TempDir(), env: map[string]string{}}
	e.deps = &Deps{
		Getenv:      func(k string) string { return e.env[k] },
		ConfigPath:  func() string { return filepath.Join(e.dir, "config.yaml") },
		SessionPath: func() string { return filepath.Join(e.dir, "session.yaml") },
		LogPath:     func() string { return filepath.Join(e.dir, "phoneauth.log") },
		IsTerminal:  func() bool { return false },
	}
	return e
}

func (e *testEnv) writeConfig(t *testing.T, yaml string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "config.yaml"), []byte(yaml), 0o600))
}

// run executes the CLI with args, feeding stdin, and returns stdout and stderr.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(e.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
