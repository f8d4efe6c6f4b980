package queue

import "errors"

// Common errors
var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrNoTaskToClaim is returned when no task is available for claiming
	ErrNoTaskToClaim = errors.New("no task available to claim")

	// ErrHandlerNotFound is returned when no handler is registered for a task
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrNoHandlers is returned when worker has no handlers registered
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrTaskNotFound is returned when a task id is unknown to the storage
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotProcessing is returned when a state transition requires the
	// task to be in processing status
	ErrTaskNotProcessing = errors.New("task is not in processing state")
)
