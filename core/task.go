package core

import (
	"context"
	"sync"
)

// Result carries the outcome of one asynchronous operation: either Value or
// Err is meaningful, never both.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

// Completion receives the Result of a Task. It runs at most once, on the
// goroutine that executed the operation.
type Completion[T any] func(Result[T])

// Task is the cancellation handle returned by every service operation.
//
// The completion is invoked at most once and never after Cancel returned.
// Cancel after delivery started is a no-op. Cancelling aborts the request
// context but does not undo effects the platform already applied.
type Task[T any] struct {
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	cancelled  bool
	delivering bool
	result     Result[T]
}

// Go runs fn on its own goroutine and hands the outcome to completion.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), completion Completion[T]) *Task[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	task := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		value, err := fn(runCtx)
		task.deliver(Result[T]{Value: value, Err: err}, completion)
	}()
	return task
}

func (t *Task[T]) deliver(result Result[T], completion Completion[T]) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.delivering = true
	t.result = result
	t.mu.Unlock()

	defer t.closeDone()
	if completion != nil {
		completion(result)
	}
}

func (t *Task[T]) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.cancelled || t.delivering {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.result = Result[T]{Err: cancelledError()}
	t.mu.Unlock()

	t.cancel()
	t.closeDone()
}

func (t *Task[T]) Cancelled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done is closed once the completion returned or the task was cancelled.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task settles. A cancelled task yields a
// SERVICE_CANCELLED error.
func (t *Task[T]) Await() (T, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result.Value, t.result.Err
}

// AwaitContext is Await bounded by ctx; a ctx expiry cancels the task.
func (t *Task[T]) AwaitContext(ctx context.Context) (T, error) {
	if ctx == nil {
		return t.Await()
	}
	select {
	case <-t.done:
	case <-ctx.Done():
		t.Cancel()
		<-t.done
	}
	return t.Await()
}

func (t *Task[T]) closeDone() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}
