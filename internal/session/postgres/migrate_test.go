// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package postgres

import (
	"errors"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoneauth/phoneauth/pkg/errutil"
)

type mockMigrate struct {
	upErr          error
	versionVal     uint
	versionDirty   bool
	versionErr     error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error { return m.upErr }

func (m *mockMigrate) Version() (uint, bool, error) {
	return m.versionVal, m.versionDirty, m.versionErr
}

func (m *mockMigrate) Close() (error, error) { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		wantCode string
	}{
		{name: "applies migrations"},
		{name: "no change is success", upErr: migrate.ErrNoChange},
		{name: "failure", upErr: errors.New("syntax error"), wantCode: "MIGRATION_UP_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{upErr: tt.upErr}}
			err := m.Up()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nil version is zero", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})

	t.Run("reports dirty", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 1, versionDirty: true}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), v)
		assert.True(t, dirty)
	})

	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("no connection")}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Pending(t *testing.T) {
	all, err := migrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
	pending, err := m.Pending()
	require.NoError(t, err)
	assert.Equal(t, all, pending)

	m = &Migrator{m: &mockMigrate{versionVal: all[len(all)-1]}}
	pending, err = m.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		srcErr    error
		dbErr     error
		component string
	}{
		{name: "clean"},
		{name: "source", srcErr: errors.New("src"), component: "source"},
		{name: "database", dbErr: errors.New("db"), component: "database"},
		{name: "both", srcErr: errors.New("src"), dbErr: errors.New("db"), component: "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{closeSourceErr: tt.srcErr, closeDbErr: tt.dbErr}}
			err := m.Close()
			if tt.component == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("not-a-valid-url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestEmbeddedMigrations_Paired(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		require.Regexp(t, pattern, name)
		if match := pattern.FindStringSubmatch(name); match[1] == "up" {
			ups[name[:len(name)-len(".up.sql")]] = true
		} else {
			downs[name[:len(name)-len(".down.sql")]] = true
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a down migration")
}
