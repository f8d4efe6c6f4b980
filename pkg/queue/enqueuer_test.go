package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/pkg/queue"
)

type recordingRepo struct {
	tasks []*queue.Task
	err   error
}

func (r *recordingRepo) CreateTask(ctx context.Context, task *queue.Task) error {
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, task)
	return nil
}

type thumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

func TestEnqueuer_Enqueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil repository", func(t *testing.T) {
		t.Parallel()

		_, err := queue.NewEnqueuer(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		enq, err := queue.NewEnqueuer(&recordingRepo{})
		require.NoError(t, err)

		assert.ErrorIs(t, enq.Enqueue(ctx, nil), queue.ErrPayloadNil)
	})

	t.Run("task name derived from payload type", func(t *testing.T) {
		t.Parallel()

		repo := &recordingRepo{}
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(ctx, thumbnailJob{UserID: "u1", FileID: "f1"}))
		require.Len(t, repo.tasks, 1)

		task := repo.tasks[0]
		assert.Equal(t, "queue_test.thumbnailJob", task.TaskName)
		assert.Equal(t, queue.DefaultQueueName, task.Queue)
		assert.Equal(t, queue.TaskStatusPending, task.Status)

		var decoded thumbnailJob
		require.NoError(t, json.Unmarshal(task.Payload, &decoded))
		assert.Equal(t, "u1", decoded.UserID)
		assert.Equal(t, "f1", decoded.FileID)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("redis down")
		enq, err := queue.NewEnqueuer(&recordingRepo{err: storeErr})
		require.NoError(t, err)

		assert.ErrorIs(t, enq.Enqueue(ctx, thumbnailJob{}), storeErr)
	})

	t.Run("custom queue option", func(t *testing.T) {
		t.Parallel()

		repo := &recordingRepo{}
		enq, err := queue.NewEnqueuer(repo, queue.WithDefaultQueue("custom"))
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(ctx, thumbnailJob{}))
		assert.Equal(t, "custom", repo.tasks[0].Queue)
	})
}
