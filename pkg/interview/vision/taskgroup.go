package vision

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// TaskGroup supervises the detached analysis tasks of one session. At most
// maxConcurrent tasks run at once and the rest queue behind the semaphore.
// maxPending caps queued plus running tasks only when positive; zero or less
// accepts every task until Shutdown. Shutdown cancels and awaits everything.
type TaskGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	mu         sync.Mutex
	pending    int
	maxPending int
	closed     bool
}

func NewTaskGroup(parent context.Context, maxConcurrent, maxPending int) *TaskGroup {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxPending > 0 && maxPending < maxConcurrent {
		maxPending = maxConcurrent
	}
	ctx, cancel := context.WithCancel(parent)
	return &TaskGroup{
		ctx:        ctx,
		cancel:     cancel,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		maxPending: maxPending,
	}
}

// Go schedules fn without blocking the caller. It reports false once the group is
// shut down, or when an explicit pending cap is reached. fn is skipped if the
// group is cancelled while it waits.
func (g *TaskGroup) Go(fn func(ctx context.Context)) bool {
	g.mu.Lock()
	if g.closed || (g.maxPending > 0 && g.pending >= g.maxPending) {
		g.mu.Unlock()
		return false
	}
	g.pending++
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			g.pending--
			g.mu.Unlock()
			g.wg.Done()
		}()

		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			return
		}
		defer g.sem.Release(1)
		fn(g.ctx)
	}()
	return true
}

// Pending returns the number of queued or running tasks.
func (g *TaskGroup) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Wait blocks until all scheduled tasks have returned, without cancelling them.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}

// Shutdown refuses new work, cancels outstanding tasks and waits for them. Safe to
// call more than once.
func (g *TaskGroup) Shutdown() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
}
