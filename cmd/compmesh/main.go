// Command compmesh inspects and validates component assemblies against the
// sample component types.
//
//	compmesh types
//	compmesh validate assembly.yaml
//	compmesh inspect assembly.toml
//
// Logging is configured through COMPMESH_LOG_LEVEL, COMPMESH_LOG_FORMAT and
// COMPMESH_LOG_SOURCE and goes to stderr.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
