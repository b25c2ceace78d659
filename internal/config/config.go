// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package config loads phoneauth settings from an optional YAML file and
// command-line flags.
package config

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/internal/country"
)

// Session backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// UI modes.
const (
	UIAuto  = "auto"
	UITUI   = "tui"
	UIPlain = "plain"
)

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultTimeout   = "30s"
	DefaultBackend   = BackendFile
	DefaultProfile   = "default"
	DefaultLogFormat = "json"
	DefaultLogLevel  = "info"
	DefaultUIMode    = UIAuto
	DefaultTheme     = "auto"
)

// Config is the complete phoneauth configuration.
type Config struct {
	API       APIConfig       `koanf:"api" json:"api,omitempty" jsonschema:"description=Backend API settings"`
	Session   SessionConfig   `koanf:"session" json:"session,omitempty" jsonschema:"description=Where the signed-in session is stored"`
	Phone     PhoneConfig     `koanf:"phone" json:"phone,omitempty"`
	Countries CountriesConfig `koanf:"countries" json:"countries,omitempty"`
	UI        UIConfig        `koanf:"ui" json:"ui,omitempty"`
	Log       LogConfig       `koanf:"log" json:"log,omitempty"`
	Metrics   MetricsConfig   `koanf:"metrics" json:"metrics,omitempty"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL string `koanf:"base_url" json:"base_url,omitempty" jsonschema:"format=uri,description=Backend root URL"`
	Timeout string `koanf:"timeout" json:"timeout,omitempty" jsonschema:"pattern=^([0-9]+(\\.[0-9]+)?(ns|us|ms|s|m|h))+$,description=Per-request timeout as a Go duration"`
}

// SessionConfig configures the session store.
type SessionConfig struct {
	Backend     string `koanf:"backend" json:"backend,omitempty" jsonschema:"enum=file,enum=memory,enum=postgres"`
	File        string `koanf:"file" json:"file,omitempty" jsonschema:"description=Session file path for the file backend"`
	DatabaseURL string `koanf:"database_url" json:"database_url,omitempty" jsonschema:"description=PostgreSQL URL for the postgres backend"`
	Profile     string `koanf:"profile" json:"profile,omitempty" jsonschema:"description=Row namespace for the postgres backend"`
}

// PhoneConfig controls how the phone number is sent.
type PhoneConfig struct {
	IncludeDialCode bool `koanf:"include_dial_code" json:"include_dial_code,omitempty" jsonschema:"description=Prefix phone_number with the selected dial code"`
}

// CountriesConfig restricts the country picker.
type CountriesConfig struct {
	Allowed []string `koanf:"allowed" json:"allowed,omitempty" jsonschema:"minItems=1"`
	Default string   `koanf:"default" json:"default,omitempty"`
}

// UIConfig selects the presentation.
type UIConfig struct {
	Mode  string `koanf:"mode" json:"mode,omitempty" jsonschema:"enum=auto,enum=tui,enum=plain"`
	Theme string `koanf:"theme" json:"theme,omitempty" jsonschema:"enum=auto,enum=light,enum=dark"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	File   string `koanf:"file" json:"file,omitempty" jsonschema:"description=Log file used while the terminal UI is running"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Textfile string `koanf:"textfile" json:"textfile,omitempty" jsonschema:"description=Write Prometheus metrics to this file on exit"`
}

// applyDefaults fills every unset field.
func (c *Config) applyDefaults() {
	setDefault(&c.API.BaseURL, DefaultBaseURL)
	setDefault(&c.API.Timeout, DefaultTimeout)
	setDefault(&c.Session.Backend, DefaultBackend)
	setDefault(&c.Session.Profile, DefaultProfile)
	if len(c.Countries.Allowed) == 0 {
		c.Countries.Allowed = []string{country.DefaultCode}
	}
	setDefault(&c.Countries.Default, c.Countries.Allowed[0])
	setDefault(&c.UI.Mode, DefaultUIMode)
	setDefault(&c.UI.Theme, DefaultTheme)
	setDefault(&c.Log.Format, DefaultLogFormat)
	setDefault(&c.Log.Level, DefaultLogLevel)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("api.base_url", c.API.BaseURL, "must be an http or https URL")
	}
	if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
		return invalid("api.timeout", c.API.Timeout, "must be a positive duration such as 30s")
	}
	if !slices.Contains([]string{BackendFile, BackendMemory, BackendPostgres}, c.Session.Backend) {
		return invalid("session.backend", c.Session.Backend, "must be 'file', 'memory' or 'postgres'")
	}
	if c.Session.Backend == BackendPostgres && c.Session.DatabaseURL == "" {
		return invalid("session.database_url", "", "is required for the postgres backend (or set DATABASE_URL)")
	}
	if _, err := country.NewList(c.Countries.Allowed, c.Countries.Default); err != nil {
		return oops.Code("CONFIG_INVALID").With("field", "countries").Errorf("countries: %v", err)
	}
	if !slices.Contains([]string{UIAuto, UITUI, UIPlain}, c.UI.Mode) {
		return invalid("ui.mode", c.UI.Mode, "must be 'auto', 'tui' or 'plain'")
	}
	if !slices.Contains([]string{"auto", "light", "dark"}, c.UI.Theme) {
		return invalid("ui.theme", c.UI.Theme, "must be 'auto', 'light' or 'dark'")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", c.Log.Format, "must be 'json' or 'text'")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return invalid("log.level", c.Log.Level, "must be 'debug', 'info', 'warn' or 'error'")
	}
	return nil
}

// Timeout returns the parsed API timeout. Call after Validate.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

func invalid(field, value, reason string) error {
	return oops.Code("CONFIG_INVALID").
		With("field", field).
		With("value", value).
		Errorf("%s %s, got %q", field, reason, value)
}
