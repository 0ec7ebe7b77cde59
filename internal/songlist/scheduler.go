package songlist

import (
	"context"
	"sync"
)

// Completion applies a task's outcome on the loop.
type Completion func()

// Task is the off-loop half of an asynchronous operation, such as a network call.
// It must not touch view state; the returned Completion does that on the loop.
type Task func(ctx context.Context) Completion

// Scheduler runs tasks off the loop and their completions on it.
type Scheduler interface {
	// Go starts task and later applies its completion on the loop.
	Go(task Task)
	// Post queues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
}

// Inline runs every task and completion immediately on the caller's goroutine.
type Inline struct {
	Ctx context.Context
}

func (s Inline) Go(task Task) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if done := task(ctx); done != nil {
		done()
	}
}

func (Inline) Post(fn func()) { fn() }

// Queue defers tasks until the test releases them, so completions can be interleaved
// with other events or applied out of order.
type Queue struct {
	mu      sync.Mutex
	pending []Task
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Go(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, task)
}

func (q *Queue) Post(fn func()) {
	q.Go(func(context.Context) Completion { return fn })
}

// Pending reports how many tasks are waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Step runs the oldest pending task and its completion. It reports false when idle.
func (q *Queue) Step() bool {
	return q.run(0)
}

// StepLast runs the newest pending task and its completion.
func (q *Queue) StepLast() bool {
	return q.run(-1)
}

// Flush runs pending tasks, including ones queued while flushing, until idle.
func (q *Queue) Flush() int {
	n := 0
	for q.Step() {
		n++
	}
	return n
}

func (q *Queue) run(at int) bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	if at < 0 {
		at = len(q.pending) - 1
	}
	task := q.pending[at]
	q.pending = append(q.pending[:at], q.pending[at+1:]...)
	q.mu.Unlock()

	if done := task(context.Background()); done != nil {
		done()
	}
	return true
}

// Loop is an event loop for headless use.
// Tasks run on their own goroutines; completions and posts run inside Run, in the
// order they were queued. Queueing never blocks, even after Run has returned.
type Loop struct {
	ctx    context.Context
	wake   chan struct{}
	mu     sync.Mutex
	events []func()
	count  int
}

func NewLoop(ctx context.Context) *Loop {
	return &Loop{ctx: ctx, wake: make(chan struct{}, 1)}
}

func (l *Loop) Go(task Task) {
	l.track(1)
	go func() {
		done := task(l.ctx)
		l.enqueue(func() {
			if done != nil {
				done()
			}
		})
	}()
}

// Post queues fn behind everything posted before it.
func (l *Loop) Post(fn func()) {
	l.track(1)
	l.enqueue(fn)
}

func (l *Loop) enqueue(fn func()) {
	l.mu.Lock()
	l.events = append(l.events, func() {
		defer l.track(-1)
		fn()
	})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return nil, false
	}
	fn := l.events[0]
	l.events[0] = nil
	l.events = l.events[1:]
	return fn, true
}

func (l *Loop) track(delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count += delta
}

// Idle reports whether no task or post is outstanding.
func (l *Loop) Idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count == 0
}

// Run applies completions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.run(ctx, func() bool { return false })
}

// RunUntilIdle applies completions until nothing is outstanding or ctx is done.
// Completions that start new tasks keep the loop running.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	return l.run(ctx, l.Idle)
}

func (l *Loop) run(ctx context.Context, stop func() bool) error {
	for !stop() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if fn, ok := l.next(); ok {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
	return nil
}
