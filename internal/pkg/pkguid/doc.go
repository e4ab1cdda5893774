// Package pkguid provides helpers for generating unique identifiers.
//
// The codebase uses these interfaces to avoid hard-coding a specific UID
// strategy. String IDs (UUIDs) tag HTTP requests and log correlation chains,
// numeric IDs (Snowflake) tag tool invocations where a compact sortable
// number is easier to eyeball in logs.
package pkguid
