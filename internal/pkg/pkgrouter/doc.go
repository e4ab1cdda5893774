// Package pkgrouter wraps HTTP routing and common middleware for the HTTP
// serve mode.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, error mapping, logging, recovery, and correlation ID
// propagation. The MCP streamable HTTP endpoint is mounted on it as a raw
// handler next to the operational endpoints.
package pkgrouter
