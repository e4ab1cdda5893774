// Package pkgmcp holds shared MCP server plumbing, currently the tool
// handler middleware that assigns correlation IDs and records per-tool logs
// and metrics. Tool registration itself stays with the feature modules.
package pkgmcp
