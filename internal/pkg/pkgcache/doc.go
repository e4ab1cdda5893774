// Package pkgcache provides the response cache behind the comments module.
//
// Two backends implement the same Cache interface: an in-memory map with
// per-entry TTL for single-instance deployments, and Redis for the HTTP
// serve mode where several instances may share one cache. Both are best
// effort; a broken cache never fails a request, it only costs an upstream
// fetch.
package pkgcache
