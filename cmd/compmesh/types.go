package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered component types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newMesh()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tINTERFACES\tDESCRIPTION")
			for _, r := range m.Kernel().Types() {
				ifaces := strings.Join(r.InterfaceNames(), ",")
				if ifaces == "" {
					ifaces = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, ifaces, r.Description)
			}

			return w.Flush()
		},
	}
}
