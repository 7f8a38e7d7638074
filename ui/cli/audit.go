// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var errNoSQLStore = errors.New("this command needs the sql settings backend")

func newAuditCmd(a *app) *cobra.Command {
	var limit int
	var schema bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the import and delete audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.svc.sqlStore
			if st == nil {
				return errNoSQLStore
			}
			out := cmd.OutOrStdout()
			if schema {
				versions, err := st.SchemaVersions(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", st.Type(), strings.Join(versions, ", "))
				return nil
			}
			entries, err := st.AuditEntries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Username, e.Action, e.Details)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the applied migration versions instead")
	return cmd
}
