// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derpfest/customizations/internal/backup"
	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/procmgr"
)

// now is replaced in tests.
var now = time.Now

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed (zstd) JSON backup of the stored settings",
		Long: `Dumps the keybox and PIF payloads, their timestamps and the preference
values into a single Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if it's not already present.
If no output file is specified, a default filename 'customizations-backup-YYYY-MM-DD.json.zst' is used.

Examples:
  customizations backup
  customizations backup my-device.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := now()
			name := backup.DefaultFileName(t)
			if len(args) == 1 {
				name = args[0]
			}
			data, err := backup.Export(cmd.Context(), a.svc.store, t)
			if err != nil {
				return errors.New(i18n.T("backup_error", err))
			}
			written, err := backup.WriteFile(name, data)
			if err != nil {
				return errors.New(i18n.T("backup_error", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup_success", written))
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore settings from a backup file",
		Long: `Writes the settings of a backup back into the store. Payloads that no
longer pass validation are skipped together with their timestamp.
Restoring a PIF payload force-stops the packages that cache it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := backup.ReadFile(args[0])
			if err != nil {
				return errors.New(i18n.T("restore_error", err))
			}
			res, err := backup.Restore(ctx, a.svc.store, data, a.svc.policy)
			if err != nil {
				return errors.New(i18n.T("restore_error", err))
			}
			out := cmd.OutOrStdout()
			for _, k := range res.Skipped {
				fmt.Fprintln(out, i18n.T("restore_skipped", k))
			}
			fmt.Fprintln(out, i18n.T("restore_success", res.Restored, args[0]))
			for _, k := range res.Payloads {
				if k == payload.Pif {
					procmgr.StopAll(ctx, a.svc.stopper, a.svc.packages)
				}
			}
			return nil
		},
	}
}
