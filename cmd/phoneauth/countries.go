// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package main

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phoneauth/phoneauth/internal/country"
)

func newCountriesCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries offered by the picker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, deps)
			if err != nil {
				return err
			}
			list, err := country.NewList(cfg.Countries.Allowed, cfg.Countries.Default)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatCountries(list))
			return nil
		},
	}
}

func formatCountries(list *country.List) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "CODE\tNAME\tDIAL\tDEFAULT")
	def := list.Default().Code
	for _, c := range list.Allowed() {
		marker := ""
		if c.Code == def {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Code, c.Name, c.DialCode, marker)
	}

	_ = w.Flush()
	return buf.String()
}
