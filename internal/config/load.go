// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig         = "config"
	FlagBaseURL        = "base-url"
	FlagLogFormat      = "log-format"
	FlagLogLevel       = "log-level"
	FlagSessionBackend = "session-backend"
	FlagUI             = "ui"
)

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	FlagBaseURL:        "api.base_url",
	FlagLogFormat:      "log.format",
	FlagLogLevel:       "log.level",
	FlagSessionBackend: "session.backend",
	FlagUI:             "ui.mode",
}

// EnvDatabaseURL is consulted when session.database_url is unset.
const EnvDatabaseURL = "DATABASE_URL"

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "config file (default: $XDG_CONFIG_HOME/phoneauth/config.yaml)")
	fs.String(FlagBaseURL, DefaultBaseURL, "backend API base URL")
	fs.String(FlagLogFormat, DefaultLogFormat, "log format (json, text)")
	fs.String(FlagLogLevel, DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagSessionBackend, DefaultBackend, "session store backend (file, memory, postgres)")
	fs.String(FlagUI, DefaultUIMode, "user interface (auto, tui, plain)")
}

// Options controls Load.
type Options struct {
	// Path is the config file. Empty means DefaultPath.
	Path string
	// DefaultPath is used when Path is empty. A missing default file is not
	// an error; a missing explicit file is.
	DefaultPath string
	// Flags overrides file values for changed flags and fills keys the file
	// does not set.
	Flags *pflag.FlagSet
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load reads the config file, validates it against the schema, layers the
// flags on top and applies defaults. The result is validated.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	path := opts.Path
	explicit := path != ""
	if !explicit && opts.Flags != nil {
		if p, err := opts.Flags.GetString(FlagConfig); err == nil && p != "" {
			path, explicit = p, true
		}
	}
	if path == "" {
		path = opts.DefaultPath
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		default:
			if err := ValidateSchema(data); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
			}
		}
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if cfg.Session.DatabaseURL == "" {
		cfg.Session.DatabaseURL = getenv(EnvDatabaseURL)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
