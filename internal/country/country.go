// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package country holds the dial codes a user may pick from.
package country

import (
	_ "embed"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

// DefaultCode is the country preselected when none is configured.
const DefaultCode = "TZ"

// Country is one selectable dial code.
type Country struct {
	Code     string `yaml:"code" json:"code"`
	Name     string `yaml:"name" json:"name"`
	DialCode string `yaml:"dial_code" json:"dial_code"`
	Flag     string `yaml:"flag" json:"flag"`
}

// Label renders the picker button text, e.g. "🇹🇿 +255".
func (c Country) Label() string {
	return c.Flag + " " + c.DialCode
}

// Known returns every embedded country in file order.
func Known() ([]Country, error) {
	var all []Country
	if err := yaml.Unmarshal(countriesYAML, &all); err != nil {
		return nil, oops.Code("COUNTRY_TABLE_INVALID").Wrap(err)
	}
	return all, nil
}

// List is the allow-listed subset of known countries.
type List struct {
	allowed  []Country
	fallback Country
}

// NewList builds a List from ISO codes. defaultCode must be one of allowed.
func NewList(allowed []string, defaultCode string) (*List, error) {
	all, err := Known()
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]Country, len(all))
	for _, c := range all {
		byCode[c.Code] = c
	}

	if len(allowed) == 0 {
		allowed = []string{DefaultCode}
	}
	l := &List{}
	seen := make(map[string]bool, len(allowed))
	for _, code := range allowed {
		code = strings.ToUpper(strings.TrimSpace(code))
		c, ok := byCode[code]
		if !ok {
			return nil, oops.Code("COUNTRY_UNKNOWN").With("code", code).Errorf("unknown country code %q", code)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		l.allowed = append(l.allowed, c)
	}

	if defaultCode == "" {
		defaultCode = l.allowed[0].Code
	}
	fallback, ok := l.Lookup(defaultCode)
	if !ok {
		return nil, oops.Code("COUNTRY_DEFAULT_NOT_ALLOWED").
			With("code", defaultCode).
			Errorf("default country %q is not in the allowed list", defaultCode)
	}
	l.fallback = fallback
	return l, nil
}

// Allowed returns the selectable countries.
func (l *List) Allowed() []Country {
	return append([]Country(nil), l.allowed...)
}

// Default returns the preselected country.
func (l *List) Default() Country {
	return l.fallback
}

// Lookup finds an allowed country by ISO code.
func (l *List) Lookup(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range l.allowed {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// ByDialCode finds an allowed country by dial code, with or without the
// leading "+".
func (l *List) ByDialCode(dial string) (Country, bool) {
	dial = strings.TrimSpace(dial)
	if dial != "" && !strings.HasPrefix(dial, "+") {
		dial = "+" + dial
	}
	for _, c := range l.allowed {
		if c.DialCode == dial {
			return c, true
		}
	}
	return Country{}, false
}
