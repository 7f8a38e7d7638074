// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/source"
	"github.com/derpfest/customizations/internal/watch"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// newPayloadCmd builds the `keybox` or `pif` command group.
func newPayloadCmd(a *app, kind payload.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("Import, show, validate or delete the %s payload", kind),
	}
	cmd.AddCommand(
		newImportCmd(a, kind),
		newShowCmd(a, kind),
		newDeleteCmd(a, kind),
		newValidateCmd(a, kind),
	)
	return cmd
}

func newImportCmd(a *app, kind payload.Kind) *cobra.Command {
	var watchFile bool
	cmd := &cobra.Command{
		Use:   "import <location>",
		Short: fmt.Sprintf("Validate and store a %s file", kind.MIMEType()),
		Long: fmt.Sprintf(`Reads a *%s file and stores it if it passes validation.

The location may be a local path, a file:// URI, sftp://user@host/path or
"-" for standard input. With --watch the file is imported again every time
it changes.`, kind.Extension()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loc := args[0]
			_, err := a.svc.ctrl.Import(ctx, kind, loc)
			if !watchFile {
				return err
			}
			if err != nil {
				logging.Warnf("initial import failed: %v", err)
			}

			path, ok := source.LocalPath(loc)
			if !ok {
				return fmt.Errorf("--watch needs a local file, got %q", loc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("watch_started", path))
			return watch.File(ctx, path, watch.DefaultDebounce, func(ctx context.Context) {
				if _, err := a.svc.ctrl.Import(ctx, kind, path); err != nil {
					logging.Warnf("re-import of %s failed: %v", path, err)
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-import the file whenever it changes")
	return cmd
}

func newShowCmd(a *app, kind payload.Kind) *cobra.Command {
	var asJSON, raw, copyRaw bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: fmt.Sprintf("Show the stored %s summary", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.svc.ctrl.Summary(cmd.Context(), kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if (raw || copyRaw) && !s.Loaded {
				return errors.New(i18n.T("nothing_stored"))
			}
			switch {
			case asJSON:
				if err := writeJSON(out, s); err != nil {
					return err
				}
			case raw:
				fmt.Fprint(out, s.Raw)
			default:
				fmt.Fprintf(out, "%s: %s\n", i18n.T(kind.MessagePrefix()+"_title"), s.Text)
			}
			if copyRaw {
				if err := clipboardWrite(s.Raw); err != nil {
					return errors.New(i18n.T("clipboard_error", err))
				}
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("copied"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored payload")
	cmd.Flags().BoolVar(&copyRaw, "copy", false, "Copy the stored payload to the clipboard")
	return cmd
}

func newDeleteCmd(a *app, kind payload.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: fmt.Sprintf("Delete the stored %s payload", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.svc.ctrl.Delete(cmd.Context(), kind)
		},
	}
}

func newValidateCmd(a *app, kind payload.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <location>",
		Short: fmt.Sprintf("Check a %s file without storing it", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.svc.ctrl.Check(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintln(out, i18n.T("validate_ok", args[0]))
				return nil
			}
			fmt.Fprintln(out, i18n.T("validate_failed", args[0]))
			for _, c := range report.Checks {
				mark := "✓"
				if !c.Passed {
					mark = "✗"
				}
				fmt.Fprintf(out, "  %s %s\n", mark, checkText(kind, a.svc.policy, c))
			}
			return fmt.Errorf("%s failed %s validation", args[0], kind)
		},
	}
}

// checkText localizes one validation check.
func checkText(kind payload.Kind, policy payload.Policy, c payload.Check) string {
	switch c.ID {
	case "check_number_of_keyboxes", "check_pif_properties":
		return i18n.T(c.ID, c.Value)
	case "check_ecdsa_certs", "check_rsa_certs":
		return i18n.T(c.ID, c.Value, policy)
	case "check_wrong_type":
		return i18n.T(c.ID, kind.MIMEType(), kind.Extension())
	}
	return i18n.T(c.ID)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
