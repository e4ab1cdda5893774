// Package pkgerror defines shared error types used across the application.
//
// It helps keep error handling consistent by providing a structured Error
// type that carries a message, type, and code. The edge layers map it to an
// HTTP status (router) or to a tool error result (MCP handlers), while the
// upstream client maps API error codes into it.
package pkgerror
