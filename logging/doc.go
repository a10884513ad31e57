// Package logging provides a minimal logging interface and adapters for the
// component runtime.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the kernel, delegators and frameworks use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - MeshLogger with component and transaction context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	k := kernel.New(func(o *kernel.Options) { o.Logger = logger })
//
// Configuration from COMPMESH_LOG_LEVEL, COMPMESH_LOG_FORMAT and
// COMPMESH_LOG_SOURCE is available through NewLoggerFromEnv.
package logging
