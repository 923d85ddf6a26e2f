package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueRunsScheduledTasks(t *testing.T) {
	q := NewTaskQueue("refetch", QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	var runs int32
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, q.Schedule(key, func(context.Context) { atomic.AddInt32(&runs, 1) }))
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduleFoldsPendingKey(t *testing.T) {
	q := NewTaskQueue("refetch", QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())
	defer q.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, q.Schedule("blocker", func(context.Context) {
		close(started)
		<-block
	}))
	<-started

	var runs int32
	task := func(context.Context) { atomic.AddInt32(&runs, 1) }
	require.NoError(t, q.Schedule("getFees", task))
	require.NoError(t, q.Schedule("getFees", task))
	assert.Equal(t, 1, q.Pending())

	close(block)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestEnqueueRequiresStart(t *testing.T) {
	q := NewTaskQueue("refetch", QueueConfig{})
	assert.Error(t, q.Schedule("k", func(context.Context) {}))
}

func TestEnqueueReportsFullBuffer(t *testing.T) {
	q := NewQueue("full", func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "2"}))
	err := q.Enqueue(Job{ID: "3"})
	assert.True(t, errors.Is(err, ErrQueueFull))
}

func TestFailedJobsAreNotRetriedByDefault(t *testing.T) {
	var attempts int32
	q := NewQueue("once", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "x"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestFailedJobsRetryWhenConfigured(t *testing.T) {
	var attempts int32
	q := NewQueue("retry", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("boom")
		}
		return nil
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "x"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
}
