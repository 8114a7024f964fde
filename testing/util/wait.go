package util

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eth2353/admission/async"
)

// WaitTimeout will wait for a WaitGroup to resolve within a timeout interval.
// Returns true if the waitgroup exceeded the timeout.
func WaitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		wg.Wait()
	}()
	select {
	case <-ch:
		return false
	case <-time.After(timeout):
		return true
	}
}

// Await fails the test unless f resolves successfully within timeout.
func Await[T any](t testing.TB, f *async.Future[T], timeout time.Duration) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	v, err := f.Await(ctx)
	if err != nil {
		t.Fatalf("future did not resolve: %v", err)
	}
	return v
}

// RequirePending fails the test if f has already resolved.
func RequirePending[T any](t testing.TB, f *async.Future[T]) {
	t.Helper()
	if _, _, ok := f.Result(); ok {
		t.Fatal("future resolved, expected it to be pending")
	}
}
