package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/compmesh/assembly"
	"github.com/hupe1980/compmesh/framework"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check an assembly file without instantiating it",
		Long: `Parse an assembly file and check its references: component names,
connection endpoints, exposures, attribute encodings and that every
component type is registered. Nothing is instantiated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := assembly.Load(args[0])
			if err != nil {
				return err
			}

			m, err := newMesh()
			if err != nil {
				return err
			}

			var unknown []string
			check := func(typ string) {
				if _, ok := m.Kernel().Registration(typ); !ok {
					unknown = append(unknown, typ)
				}
			}

			for _, c := range a.Components {
				check(c.Type)
			}

			if f := a.Framework; f != nil {
				typ := f.Type
				if typ == "" {
					typ = framework.TypeName
				}
				check(typ)

				for _, c := range f.Components {
					check(c.Type)
				}
			}

			if len(unknown) > 0 {
				return fmt.Errorf("%w: unregistered component types: %s", assembly.ErrInvalid, strings.Join(unknown, ", "))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d components, %d connections)\n", args[0], a.ComponentCount(), len(a.Connections))

			return nil
		},
	}
}
