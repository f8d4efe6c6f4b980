package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements the queue repository interfaces for testing and
// local development.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*TasksDlq

	lockTicker *time.Ticker
	done       chan struct{}
}

// NewMemoryStorage creates a new in-memory storage implementation.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
		dlq:   make(map[uuid.UUID]*TasksDlq),
		done:  make(chan struct{}),
	}

	// Recovers tasks from dead workers
	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationLoop()

	return ms
}

// Close stops the background goroutines.
func (ms *MemoryStorage) Close() error {
	close(ms.done)
	ms.lockTicker.Stop()
	return nil
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	// Clone task to prevent external modifications
	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy

	return nil
}

// ClaimTask implements WorkerRepository. The earliest due pending task in the
// requested queues wins; ties resolve by scheduled time.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task

	for _, task := range ms.tasks {
		if task.Status != TaskStatusPending {
			continue
		}
		if !slices.Contains(queues, task.Queue) {
			continue
		}
		// Skip tasks scheduled for future execution (retry backoff, delays)
		if task.ScheduledAt.After(now) {
			continue
		}
		if best == nil || task.ScheduledAt.Before(best.ScheduledAt) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	taskCopy := *best
	return &taskCopy, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil

	return nil
}

// FailTask implements WorkerRepository. Tasks with retries left go back to
// pending with a linear backoff; exhausted tasks are marked failed and await
// MoveToDLQ.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount >= task.MaxRetries {
		task.Status = TaskStatusFailed
	} else {
		task.Status = TaskStatusPending
		// Linear backoff prevents thundering herd on persistent failures
		backoff := time.Duration(task.RetryCount) * 30 * time.Second
		task.ScheduledAt = time.Now().Add(backoff)
	}

	return nil
}

// MoveToDLQ implements WorkerRepository.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	dlqEntry := &TasksDlq{
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

	ms.dlq[dlqEntry.ID] = dlqEntry
	delete(ms.tasks, taskID)

	return nil
}

// DeadTasks returns a snapshot of the dead letter queue for inspection.
func (ms *MemoryStorage) DeadTasks() []TasksDlq {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]TasksDlq, 0, len(ms.dlq))
	for _, entry := range ms.dlq {
		out = append(out, *entry)
	}
	return out
}

// lockExpirationLoop recovers tasks claimed by crashed or unresponsive
// workers. A task whose lock expired goes back to pending, keeping its retry
// count, so another worker can pick it up.
func (ms *MemoryStorage) lockExpirationLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, task := range ms.tasks {
		if task.Status == TaskStatusProcessing && task.LockedUntil != nil && task.LockedUntil.Before(now) {
			task.Status = TaskStatusPending
			task.LockedUntil = nil
			task.LockedBy = nil
		}
	}
}
