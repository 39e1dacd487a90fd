package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTask_CompletionRunsExactlyOnce(t *testing.T) {
	var calls int32
	task := Go(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	}, func(result Result[string]) {
		atomic.AddInt32(&calls, 1)
		if result.Value != "ok" || result.Err != nil {
			t.Errorf("unexpected result %#v", result)
		}
	})

	value, err := task.Await()
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if value != "ok" {
		t.Fatalf("expected ok, got %q", value)
	}
	task.Cancel()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one completion call, got %d", got)
	}
	if task.Cancelled() {
		t.Fatalf("expected cancel after delivery to be a no-op")
	}
}

func TestTask_CancelSuppressesCompletionAndAbortsContext(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan struct{})
	var calls int32

	task := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		close(aborted)
		return 0, ctx.Err()
	}, func(Result[int]) {
		atomic.AddInt32(&calls, 1)
	})

	<-started
	task.Cancel()

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected cancel to abort the operation context")
	}
	_, err := task.Await()
	if !IsCancelled(err) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected completion to be suppressed, got %d calls", got)
	}
}

func TestTask_ErrorsReachCompletion(t *testing.T) {
	sentinel := errors.New("boom")
	results := make(chan Result[int], 1)
	task := Go(context.Background(), func(context.Context) (int, error) {
		return 0, sentinel
	}, func(result Result[int]) {
		results <- result
	})

	result := <-results
	if !errors.Is(result.Err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", result.Err)
	}
	if _, err := task.Await(); !errors.Is(err, sentinel) {
		t.Fatalf("expected await to return sentinel, got %v", err)
	}
}

func TestTask_AwaitContextCancelsOnExpiry(t *testing.T) {
	task := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := task.AwaitContext(ctx)
	if !IsCancelled(err) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	if !task.Cancelled() {
		t.Fatalf("expected task to be cancelled")
	}
}
