package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	taskKeyPrefix = "queue:task:"

	// Completed tasks are kept around briefly for inspection, then expire.
	completedTaskTTL = 24 * time.Hour
)

// claimScript atomically pops the earliest due task id from the pending set
// and moves it into the processing set with its lock deadline as score.
// KEYS[1] = pending zset, KEYS[2] = processing zset
// ARGV[1] = now (unix ms), ARGV[2] = lock deadline (unix ms)
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
	return false
end
redis.call('ZREM', KEYS[1], ids[1])
redis.call('ZADD', KEYS[2], ARGV[2], ids[1])
return ids[1]
`)

// RedisStorage implements the queue repository interfaces on Redis.
// Pending tasks live in a per-queue sorted set scored by due time, claimed
// tasks in a processing set scored by lock deadline, and task bodies as JSON
// values. Claiming is a Lua script so concurrent workers never take the same
// task twice.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage creates a Redis-backed queue storage.
func NewRedisStorage(client *redis.Client) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrRepositoryNil
	}
	return &RedisStorage{client: client}, nil
}

func pendingKey(queue string) string    { return "queue:" + queue + ":pending" }
func processingKey(queue string) string { return "queue:" + queue + ":processing" }
func dlqKey(queue string) string        { return "queue:" + queue + ":dlq" }
func taskKey(id uuid.UUID) string       { return taskKeyPrefix + id.String() }

// CreateTask implements EnqueuerRepository.
func (rs *RedisStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, taskKey(task.ID), data, 0)
	pipe.ZAdd(ctx, pendingKey(task.Queue), redis.Z{
		Score:  float64(task.ScheduledAt.UnixMilli()),
		Member: task.ID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store task %s: %w", task.ID, err)
	}

	return nil
}

// ClaimTask implements WorkerRepository.
func (rs *RedisStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	now := time.Now()
	lockUntil := now.Add(lockDuration)

	for _, queue := range queues {
		// Return tasks abandoned by dead workers to the pending set first,
		// keeping their retry counts.
		if err := rs.requeueExpired(ctx, queue, now); err != nil {
			return nil, err
		}

		res, err := claimScript.Run(ctx, rs.client,
			[]string{pendingKey(queue), processingKey(queue)},
			now.UnixMilli(), lockUntil.UnixMilli(),
		).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim task from queue %q: %w", queue, err)
		}

		id, err := uuid.Parse(res.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid task id in queue %q: %w", queue, err)
		}

		task, err := rs.getTask(ctx, id)
		if err != nil {
			return nil, err
		}

		task.Status = TaskStatusProcessing
		task.LockedUntil = &lockUntil
		task.LockedBy = &workerID
		if err := rs.putTask(ctx, task, 0); err != nil {
			return nil, err
		}

		return task, nil
	}

	return nil, ErrNoTaskToClaim
}

// CompleteTask implements WorkerRepository.
func (rs *RedisStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	task, err := rs.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil

	pipe := rs.client.TxPipeline()
	pipe.ZRem(ctx, processingKey(task.Queue), taskID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}

	return rs.putTask(ctx, task, completedTaskTTL)
}

// FailTask implements WorkerRepository.
func (rs *RedisStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	task, err := rs.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	pipe := rs.client.TxPipeline()
	pipe.ZRem(ctx, processingKey(task.Queue), taskID.String())

	if task.RetryCount >= task.MaxRetries {
		task.Status = TaskStatusFailed
	} else {
		task.Status = TaskStatusPending
		// Linear backoff prevents thundering herd on persistent failures
		backoff := time.Duration(task.RetryCount) * 30 * time.Second
		task.ScheduledAt = time.Now().Add(backoff)
		pipe.ZAdd(ctx, pendingKey(task.Queue), redis.Z{
			Score:  float64(task.ScheduledAt.UnixMilli()),
			Member: taskID.String(),
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to fail task %s: %w", taskID, err)
	}

	return rs.putTask(ctx, task, 0)
}

// MoveToDLQ implements WorkerRepository.
func (rs *RedisStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	task, err := rs.getTask(ctx, taskID)
	if err != nil {
		return err
	}

	dlqEntry := TasksDlq{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  time.Now(),
	}
	if task.Error != nil {
		dlqEntry.Error = *task.Error
	}

	data, err := json.Marshal(dlqEntry)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ entry for task %s: %w", taskID, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.LPush(ctx, dlqKey(task.Queue), data)
	pipe.ZRem(ctx, pendingKey(task.Queue), taskID.String())
	pipe.ZRem(ctx, processingKey(task.Queue), taskID.String())
	pipe.Del(ctx, taskKey(taskID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move task %s to DLQ: %w", taskID, err)
	}

	return nil
}

// requeueExpired moves tasks with expired locks from processing back to pending.
func (rs *RedisStorage) requeueExpired(ctx context.Context, queue string, now time.Time) error {
	ids, err := rs.client.ZRangeByScore(ctx, processingKey(queue), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan expired locks in queue %q: %w", queue, err)
	}

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}

		task, err := rs.getTask(ctx, id)
		if err != nil {
			// Body vanished; drop the orphaned index entry.
			rs.client.ZRem(ctx, processingKey(queue), raw)
			continue
		}

		task.Status = TaskStatusPending
		task.LockedUntil = nil
		task.LockedBy = nil

		pipe := rs.client.TxPipeline()
		pipe.ZRem(ctx, processingKey(queue), raw)
		pipe.ZAdd(ctx, pendingKey(queue), redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: raw,
		})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to requeue expired task %s: %w", id, err)
		}
		if err := rs.putTask(ctx, task, 0); err != nil {
			return err
		}
	}

	return nil
}

func (rs *RedisStorage) getTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	data, err := rs.client.Get(ctx, taskKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", id, err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", id, err)
	}
	return &task, nil
}

func (rs *RedisStorage) putTask(ctx context.Context, task *Task, ttl time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}
	if err := rs.client.Set(ctx, taskKey(task.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store task %s: %w", task.ID, err)
	}
	return nil
}
