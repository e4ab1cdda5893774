package pkgpool

import "time"

// Option configures a Pool.
type Option func(*config)

type config struct {
	hooks Hooks
}

// Hooks receive pool lifecycle events, typically to feed metrics.
//
// OnSchedule fires when a task is accepted, OnStart when it is promoted out
// of the queue (wait is the time it spent queued), OnSettle when it finishes.
// OnStart runs under the pool lock, so hooks must be fast and must not call
// back into the pool.
type Hooks struct {
	OnSchedule func()
	OnStart    func(wait time.Duration)
	OnSettle   func(d time.Duration, err error)
}

// WithHooks attaches lifecycle hooks to the pool.
func WithHooks(hooks Hooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}
