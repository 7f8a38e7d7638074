// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/prefs"
)

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}

func newStatusBarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "statusbar [mic-camera|location] [on|off]",
		Aliases: []string{"privacy"},
		Short:   "Show or set the privacy indicator switches",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := a.svc.store
			toggles := prefs.Toggles
			if len(args) > 0 {
				t, err := prefs.ToggleByName(args[0])
				if err != nil {
					return err
				}
				if len(args) == 2 {
					on, err := parseSwitch(args[1])
					if err != nil {
						return err
					}
					if err := t.Set(ctx, store, on); err != nil {
						return fmt.Errorf("%s", i18n.T("store_error", err))
					}
				}
				toggles = []prefs.Toggle{t}
			}
			for _, t := range toggles {
				on, err := t.Enabled(ctx, store)
				if err != nil {
					return err
				}
				state := i18n.T("switch_off")
				if on {
					state = i18n.T("switch_on")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", i18n.T(t.TitleID), state)
			}
			return nil
		},
	}
}

func newQSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qs",
		Short: "Quick settings preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := prefs.CycleSummary(cmd.Context(), a.svc.store, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", i18n.T("qs_show_data_usage_title"), summary)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "data-usage-cycle [daily|weekly|<n>]",
		Short: "Show or set the data usage cycle type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := a.svc.store
			if len(args) == 1 {
				v, err := prefs.ParseCycle(args[0])
				if err != nil {
					return err
				}
				if err := prefs.SetCycle(ctx, store, v); err != nil {
					return fmt.Errorf("%s", i18n.T("store_error", err))
				}
			}
			v, err := prefs.Cycle(ctx, store)
			if err != nil {
				return err
			}
			summary, err := prefs.CycleSummary(ctx, store, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", i18n.T("qs_data_usage_cycle_type_title"), prefs.CycleLabel(v))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("qs_show_data_usage_title"), summary)
			return nil
		},
	})
	return cmd
}
