// internal/scheduler/scheduler_test.go
package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueRunner collects posted tasks so the test controls when they execute,
// mirroring the ops channel of the real loop.
type queueRunner struct {
	mu    sync.Mutex
	tasks []func()
}

func (r *queueRunner) Post(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, fn)
}

func (r *queueRunner) drain() int {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = nil
	r.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// inlineRunner executes tasks immediately on the timer goroutine.
type inlineRunner struct{}

func (inlineRunner) Post(fn func()) { fn() }

func TestAfterFiresOnce(t *testing.T) {
	runner := &queueRunner{}
	scope := NewScope(runner)

	var mu sync.Mutex
	fired := 0
	scope.After(5*time.Millisecond, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	assert.Equal(t, 1, scope.Pending())

	require.Eventually(t, func() bool {
		return runner.drain() > 0
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired)
	assert.Zero(t, scope.Pending())
}

func TestCancelStopsPendingTimers(t *testing.T) {
	runner := &queueRunner{}
	scope := NewScope(runner)

	scope.After(time.Hour, func() { t.Error("cancelled task ran") })
	scope.After(time.Hour, func() { t.Error("cancelled task ran") })
	require.Equal(t, 2, scope.Pending())

	scope.Cancel()
	assert.True(t, scope.Cancelled())
	assert.Zero(t, scope.Pending())

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, runner.drain())
}

func TestCancelGuardsQueuedCallback(t *testing.T) {
	runner := &queueRunner{}
	scope := NewScope(runner)

	scope.After(time.Millisecond, func() { t.Error("stale task ran after cancel") })

	// Wait for the timer to fire and queue the callback, then cancel before
	// the loop drains it.
	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.tasks) == 1
	}, time.Second, time.Millisecond)

	scope.Cancel()
	runner.drain()
}

func TestAfterOnCancelledScopeIsNoop(t *testing.T) {
	runner := &queueRunner{}
	scope := NewScope(runner)
	scope.Cancel()

	scope.After(time.Millisecond, func() { t.Error("task ran on dead scope") })
	assert.Zero(t, scope.Pending())
}

func TestEveryRepeatsUntilCancel(t *testing.T) {
	scope := NewScope(inlineRunner{})

	var mu sync.Mutex
	runs := 0
	scope.Every(2*time.Millisecond, func() {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs >= 3
	}, time.Second, time.Millisecond)

	scope.Cancel()
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	after := runs
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, runs)
}

func TestCancelIsIdempotent(t *testing.T) {
	scope := NewScope(&queueRunner{})
	scope.Cancel()
	scope.Cancel()
	assert.True(t, scope.Cancelled())
}
