// Package externaltask runs the one-shot setup tasks the harness performs
// before serving, such as seeding the admin and security databases.
package externaltask

import (
	"context"
	"fmt"
)

// Task is a unit of startup work.
type Task interface {
	Name() string
	Execute(ctx context.Context) error
}

// TaskError identifies the task that stopped a run.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("external task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
