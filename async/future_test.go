package async_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eth2353/admission/async"
	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompletesOnce(t *testing.T) {
	f := async.NewFuture[int]()
	_, _, ok := f.Result()
	require.False(t, ok)

	require.True(t, f.Complete(1))
	require.False(t, f.Complete(2))
	require.False(t, f.Fail(errors.New("late")))

	v, err, ok := f.Result()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_AwaitRespectsContext(t *testing.T) {
	f := async.NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The future itself is unaffected by the abandoned wait.
	f.Complete(7)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFuture_OnCompleteAfterResolution(t *testing.T) {
	f := async.Completed("done")
	var got string
	f.OnComplete(async.Immediate, func(v string, err error) {
		require.NoError(t, err)
		got = v
	})
	assert.Equal(t, "done", got)
}

func TestThen_PropagatesErrors(t *testing.T) {
	wantErr := errors.New("boom")
	called := false
	out := async.Then(async.Immediate, async.Failed[int](wantErr), func(int) (string, error) {
		called = true
		return "", nil
	})
	_, err, ok := out.Result()
	require.True(t, ok)
	require.ErrorIs(t, err, wantErr)
	assert.False(t, called)
}

func TestCompose_WaitsForInnerFuture(t *testing.T) {
	inner := async.NewFuture[int]()
	out := async.Compose(async.Immediate, async.Completed(2), func(v int) *async.Future[int] {
		return async.Then(async.Immediate, inner, func(x int) (int, error) { return x * v, nil })
	})
	_, _, ok := out.Result()
	require.False(t, ok)

	inner.Complete(21)
	v, err, ok := out.Result()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCompose_NilFuture(t *testing.T) {
	out := async.Compose(async.Immediate, async.Completed(1), func(int) *async.Future[int] { return nil })
	_, err, ok := out.Result()
	require.True(t, ok)
	require.ErrorIs(t, err, async.ErrNilFuture)
}

func TestOrFailed(t *testing.T) {
	f := async.Completed(3)
	assert.Same(t, f, async.OrFailed(f))

	_, err, ok := async.OrFailed[int](nil).Result()
	require.True(t, ok)
	require.ErrorIs(t, err, async.ErrNilFuture)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	defer leaktest.Check(t)()

	pool := async.NewPool(2)
	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Go(func() {
			defer wg.Done()
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRun_OnGoScheduler(t *testing.T) {
	defer leaktest.Check(t)()

	f := async.Run(async.GoScheduler, func() (int, error) { return 3, nil })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
