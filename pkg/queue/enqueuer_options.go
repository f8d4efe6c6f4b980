package queue

import "time"

// EnqueuerOption is a functional option for configuring an Enqueuer.
type EnqueuerOption func(*enqueuerOptions)

type enqueuerOptions struct {
	defaultQueue string
}

// WithDefaultQueue sets the default queue name.
func WithDefaultQueue(queue string) EnqueuerOption {
	return func(o *enqueuerOptions) {
		if queue != "" {
			o.defaultQueue = queue
		}
	}
}

// EnqueueOption is a functional option for the Enqueue method.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	queue      string
	maxRetries int8
	delay      time.Duration
	taskName   string
}

// WithQueue sets the queue for the task.
func WithQueue(queue string) EnqueueOption {
	return func(o *enqueueOptions) {
		if queue != "" {
			o.queue = queue
		}
	}
}

// WithMaxRetries sets the maximum number of retries (0-10).
// Capped at 10 to prevent infinite retry loops on persistent failures.
func WithMaxRetries(n int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 0 {
			if n > 10 {
				n = 10
			}
			o.maxRetries = n
		}
	}
}

// WithDelay schedules the task to run after the given duration.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithTaskName overrides the task name derived from the payload type.
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.taskName = name
		}
	}
}
