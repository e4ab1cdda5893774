// Package pkgmetrics provides Prometheus instrumentation for the
// application: upstream API calls, the fetch pool, tool invocations, and the
// response cache.
//
// All metrics live under the bilimcp namespace and are registered against a
// caller-supplied registerer, so tests can use an isolated registry. The
// HTTP serve mode exposes them on /metrics; in stdio mode they are still
// collected but nothing scrapes them.
package pkgmetrics
