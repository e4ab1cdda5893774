// Package pkglog contains logging helpers used across the application.
//
// It is built around slog and keeps logs consistent by:
//   - Initializing a JSON handler with stable keys, writing to stderr so that
//     stdout stays reserved for the MCP stdio transport.
//   - Attaching invocation correlation IDs (when present) to each log record.
package pkglog
