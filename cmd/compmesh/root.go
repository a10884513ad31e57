package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/compmesh"
	"github.com/hupe1980/compmesh/logging"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compmesh",
		Short:         "Inspect and validate reflective component assemblies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTypesCmd(), newValidateCmd(), newInspectCmd())

	return root
}

// newMesh builds a mesh with the sample types and the environment-driven
// logger.
func newMesh() (*compmesh.Mesh, error) {
	logger, err := logging.NewLoggerFromEnv(os.Stderr)
	if err != nil {
		return nil, err
	}

	return compmesh.New(func(o *compmesh.Options) {
		o.Logger = logger
		o.Samples = true
	})
}
