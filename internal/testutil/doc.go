// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing kernels with the sample types and small
// component graphs. They are not intended for production usage.
package testutil
