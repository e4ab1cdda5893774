package pkgpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Task is a unit of work scheduled on a Pool. It receives the context that
// was passed to Schedule.
type Task[T any] func(ctx context.Context) (T, error)

// Pool runs tasks with a fixed concurrency limit, starting them strictly in
// the order they were scheduled.
//
// Schedule never blocks: tasks above the limit wait in a FIFO queue and are
// promoted one by one as running tasks settle. A queued task is never
// dropped; a task that should stop early must observe its own context.
type Pool[T any] struct {
	limit int
	hooks Hooks

	mu     sync.Mutex
	queue  []*item[T]
	active int
}

type item[T any] struct {
	ctx      context.Context
	task     Task[T]
	future   *Future[T]
	enqueued time.Time
}

// NewPool creates a Pool running at most limit tasks at once. A limit below
// one is clamped to one, which degrades the pool to serial execution.
func NewPool[T any](limit int, opts ...Option) *Pool[T] {
	if limit < 1 {
		slog.Warn("pool limit below one, running serially", "limit", limit)
		limit = 1
	}

	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Pool[T]{limit: limit, hooks: cfg.hooks}
}

// Schedule enqueues task and returns a Future that settles when it finishes.
//
// ctx is handed to the task when it starts. Canceling it does not remove the
// task from the queue.
func (p *Pool[T]) Schedule(ctx context.Context, task Task[T]) *Future[T] {
	it := &item[T]{
		ctx:      ctx,
		task:     task,
		future:   newFuture[T](),
		enqueued: time.Now(),
	}

	if p.hooks.OnSchedule != nil {
		p.hooks.OnSchedule()
	}

	p.mu.Lock()
	p.queue = append(p.queue, it)
	p.advance()
	p.mu.Unlock()

	return it.future
}

// advance promotes queued tasks into free slots. Callers must hold p.mu;
// promoting under the lock is what keeps start order exactly FIFO.
func (p *Pool[T]) advance() {
	for p.active < p.limit && len(p.queue) > 0 {
		it := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++

		if p.hooks.OnStart != nil {
			p.hooks.OnStart(time.Since(it.enqueued))
		}

		go p.run(it)
	}
}

func (p *Pool[T]) run(it *item[T]) {
	started := time.Now()
	value, err := p.execute(it.ctx, it.task)

	if p.hooks.OnSettle != nil {
		p.hooks.OnSettle(time.Since(started), err)
	}

	it.future.settle(value, err)

	p.mu.Lock()
	p.active--
	p.advance()
	p.mu.Unlock()
}

// execute runs one task, converting a panic into an error so a misbehaving
// task cannot hold its slot forever or crash the process.
func (p *Pool[T]) execute(ctx context.Context, task Task[T]) (value T, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			slog.ErrorContext(ctx, "panic occurred in pool task", "stack", string(stack))
			err = fmt.Errorf("task panicked: %v", rvr)
		}
	}()

	return task(ctx)
}
