package queue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/pkg/queue"
)

func TestWorker_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("nil repository", func(t *testing.T) {
		t.Parallel()

		_, err := queue.NewWorker(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("start without handlers", func(t *testing.T) {
		t.Parallel()

		ms := queue.NewMemoryStorage()
		defer ms.Close()

		worker, err := queue.NewWorker(ms)
		require.NoError(t, err)

		assert.ErrorIs(t, worker.Start(context.Background()), queue.ErrNoHandlers)
	})

	t.Run("stop before start", func(t *testing.T) {
		t.Parallel()

		ms := queue.NewMemoryStorage()
		defer ms.Close()

		worker, err := queue.NewWorker(ms)
		require.NoError(t, err)

		assert.Error(t, worker.Stop())
	})
}

func TestWorker_ProcessesTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ms := queue.NewMemoryStorage()
	defer ms.Close()

	enq, err := queue.NewEnqueuer(ms)
	require.NoError(t, err)

	var processed atomic.Int32
	var got thumbnailJob
	handler := queue.NewTaskHandler(func(ctx context.Context, payload thumbnailJob) error {
		got = payload
		processed.Add(1)
		return nil
	})

	worker, err := queue.NewWorker(ms,
		queue.WithPullInterval(10*time.Millisecond),
		queue.WithMaxConcurrentTasks(2),
	)
	require.NoError(t, err)
	worker.RegisterHandlers(handler)

	require.NoError(t, enq.Enqueue(ctx, thumbnailJob{UserID: "u1", FileID: "f1"}))
	require.NoError(t, worker.Start(ctx))

	require.Eventually(t, func() bool {
		return processed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, worker.Stop())
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "f1", got.FileID)
}

func TestWorker_FailedTaskEndsInDLQ(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ms := queue.NewMemoryStorage()
	defer ms.Close()

	enq, err := queue.NewEnqueuer(ms)
	require.NoError(t, err)

	handler := queue.NewTaskHandler(func(ctx context.Context, payload thumbnailJob) error {
		return assert.AnError
	})

	worker, err := queue.NewWorker(ms, queue.WithPullInterval(10*time.Millisecond))
	require.NoError(t, err)
	worker.RegisterHandlers(handler)

	// No retries: the first failure goes straight to the DLQ.
	require.NoError(t, enq.Enqueue(ctx, thumbnailJob{FileID: "f1"}, queue.WithMaxRetries(0)))
	require.NoError(t, worker.Start(ctx))

	require.Eventually(t, func() bool {
		return len(ms.DeadTasks()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, worker.Stop())

	dead := ms.DeadTasks()
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].Error, assert.AnError.Error())
}
