// Package pkgpool provides a bounded-concurrency task pool with per-task
// futures.
//
// The pool exists for fan-out against the upstream API: one page fetch
// spawns a reply-thread task per comment, and the pool keeps at most N
// requests in flight while promoting queued tasks strictly
// first-in-first-out. Each Schedule call returns a Future, so the caller
// collects results in whatever order it likes, and one failing task never
// disturbs the others.
//
// There is no shutdown and no queue cancellation. Pools are cheap and are
// created per fetch; once the batch's futures have settled there is nothing
// left to clean up.
package pkgpool
