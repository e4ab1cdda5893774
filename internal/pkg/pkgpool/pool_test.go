package pkgpool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolNeverExceedsLimit(t *testing.T) {
	const limit, tasks = 2, 5

	pool := NewPool[int](limit)
	release := make(chan struct{})

	var inflight, highest int32
	futures := make([]*Future[int], 0, tasks)
	for i := 0; i < tasks; i++ {
		i := i
		futures = append(futures, pool.Schedule(context.Background(), func(context.Context) (int, error) {
			cur := atomic.AddInt32(&inflight, 1)
			for {
				seen := atomic.LoadInt32(&highest)
				if cur <= seen || atomic.CompareAndSwapInt32(&highest, seen, cur) {
					break
				}
			}
			<-release
			atomic.AddInt32(&inflight, -1)
			return i, nil
		}))
	}

	close(release)

	for i, fut := range futures {
		got, err := fut.Wait(context.Background())
		if err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, err)
		}
		if got != i {
			t.Fatalf("task %d: expected value %d, got %d", i, i, got)
		}
	}

	if got := atomic.LoadInt32(&highest); got > limit {
		t.Fatalf("expected at most %d tasks in flight, observed %d", limit, got)
	}
}

func TestPoolStartsTasksInOrder(t *testing.T) {
	const limit, tasks = 2, 5

	pool := NewPool[int](limit)

	started := make(chan int, tasks)
	release := make([]chan struct{}, tasks)
	for i := range release {
		release[i] = make(chan struct{})
	}

	futures := make([]*Future[int], 0, tasks)
	for i := 0; i < tasks; i++ {
		i := i
		futures = append(futures, pool.Schedule(context.Background(), func(context.Context) (int, error) {
			started <- i
			<-release[i]
			return i, nil
		}))
	}

	first := map[int]bool{}
	first[<-started] = true
	first[<-started] = true
	if !first[0] || !first[1] {
		t.Fatalf("expected tasks 0 and 1 to start first, got %v", first)
	}

	// Each finished task frees exactly one slot, so the queue head must be
	// the next and only task to start.
	close(release[0])
	if got := <-started; got != 2 {
		t.Fatalf("expected task 2 to start after task 0 finished, got %d", got)
	}
	close(release[1])
	if got := <-started; got != 3 {
		t.Fatalf("expected task 3 to start next, got %d", got)
	}
	close(release[2])
	if got := <-started; got != 4 {
		t.Fatalf("expected task 4 to start last, got %d", got)
	}
	close(release[3])
	close(release[4])

	for i, fut := range futures {
		if _, err := fut.Wait(context.Background()); err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, err)
		}
	}
}

func TestPoolStartsAllWhenUnderLimit(t *testing.T) {
	pool := NewPool[int](5)

	started := make(chan int, 3)
	release := make(chan struct{})

	futures := make([]*Future[int], 0, 3)
	for i := 0; i < 3; i++ {
		i := i
		futures = append(futures, pool.Schedule(context.Background(), func(context.Context) (int, error) {
			started <- i
			<-release
			return i, nil
		}))
	}

	// All three must start without any task having to finish first.
	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		seen[<-started] = true
	}
	if !seen[0] || !seen[1] || !seen[2] {
		t.Fatalf("expected all tasks started immediately, got %v", seen)
	}

	close(release)
	for i, fut := range futures {
		if _, err := fut.Wait(context.Background()); err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, err)
		}
	}
}

func TestPoolIsolatesFailures(t *testing.T) {
	pool := NewPool[string](5)

	errBoom := errors.New("boom")
	ok := func(v string) Task[string] {
		return func(context.Context) (string, error) { return v, nil }
	}

	futA := pool.Schedule(context.Background(), ok("a"))
	futB := pool.Schedule(context.Background(), func(context.Context) (string, error) {
		return "", errBoom
	})
	futC := pool.Schedule(context.Background(), ok("c"))

	if _, err := futB.Wait(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if got, err := futA.Wait(context.Background()); err != nil || got != "a" {
		t.Fatalf("expected value a, got %q err %v", got, err)
	}
	if got, err := futC.Wait(context.Background()); err != nil || got != "c" {
		t.Fatalf("expected value c, got %q err %v", got, err)
	}
}

func TestPoolClampsLimitAndRunsSerially(t *testing.T) {
	pool := NewPool[int](0)

	var mu sync.Mutex
	var order []int
	var inflight int32

	futures := make([]*Future[int], 0, 3)
	for i := 0; i < 3; i++ {
		i := i
		futures = append(futures, pool.Schedule(context.Background(), func(context.Context) (int, error) {
			if cur := atomic.AddInt32(&inflight, 1); cur > 1 {
				t.Errorf("expected serial execution, found %d tasks in flight", cur)
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&inflight, -1)
			return i, nil
		}))
	}

	for i, fut := range futures {
		if _, err := fut.Wait(context.Background()); err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected serial order 0,1,2, got %v", order)
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	pool := NewPool[int](1)

	futBad := pool.Schedule(context.Background(), func(context.Context) (int, error) {
		panic("boom")
	})
	futOK := pool.Schedule(context.Background(), func(context.Context) (int, error) {
		return 7, nil
	})

	if _, err := futBad.Wait(context.Background()); err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected panic error, got %v", err)
	}
	// The panicking task must have released its slot.
	if got, err := futOK.Wait(context.Background()); err != nil || got != 7 {
		t.Fatalf("expected 7 after panic, got %d err %v", got, err)
	}
}

func TestFutureWaitHonorsContext(t *testing.T) {
	pool := NewPool[int](1)

	release := make(chan struct{})
	fut := pool.Schedule(context.Background(), func(context.Context) (int, error) {
		<-release
		return 42, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fut.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	if got, err := fut.Wait(context.Background()); err != nil || got != 42 {
		t.Fatalf("expected 42 after settle, got %d err %v", got, err)
	}
}

func TestFutureDoneSignalsSettlement(t *testing.T) {
	pool := NewPool[int](1)

	release := make(chan struct{})
	fut := pool.Schedule(context.Background(), func(context.Context) (int, error) {
		<-release
		return 9, nil
	})

	select {
	case <-fut.Done():
		t.Fatal("future settled before the task finished")
	default:
	}

	close(release)
	<-fut.Done()
	if got, err := fut.Wait(context.Background()); err != nil || got != 9 {
		t.Fatalf("expected 9 after settle, got %d err %v", got, err)
	}
}

func TestPoolHooks(t *testing.T) {
	var scheduled, started, settled, failed int32

	pool := NewPool[int](2, WithHooks(Hooks{
		OnSchedule: func() { atomic.AddInt32(&scheduled, 1) },
		OnStart:    func(time.Duration) { atomic.AddInt32(&started, 1) },
		OnSettle: func(_ time.Duration, err error) {
			atomic.AddInt32(&settled, 1)
			if err != nil {
				atomic.AddInt32(&failed, 1)
			}
		},
	}))

	futures := []*Future[int]{
		pool.Schedule(context.Background(), func(context.Context) (int, error) { return 1, nil }),
		pool.Schedule(context.Background(), func(context.Context) (int, error) { return 0, errors.New("bad") }),
		pool.Schedule(context.Background(), func(context.Context) (int, error) { return 3, nil }),
	}
	for _, fut := range futures {
		_, _ = fut.Wait(context.Background())
	}

	if got := atomic.LoadInt32(&scheduled); got != 3 {
		t.Fatalf("expected 3 scheduled, got %d", got)
	}
	if got := atomic.LoadInt32(&started); got != 3 {
		t.Fatalf("expected 3 started, got %d", got)
	}
	if got := atomic.LoadInt32(&settled); got != 3 {
		t.Fatalf("expected 3 settled, got %d", got)
	}
	if got := atomic.LoadInt32(&failed); got != 1 {
		t.Fatalf("expected 1 failed, got %d", got)
	}
}
