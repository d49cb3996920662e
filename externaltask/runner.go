package externaltask

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status describes the most recent Run.
type Status struct {
	Ran        bool
	Completed  []string
	FailedTask string
	Err        error
	FinishedAt time.Time
}

// Runner executes tasks one after another in the order given. The first
// failure stops the run; there are no retries.
type Runner struct {
	tasks   []Task
	logger  *slog.Logger
	metrics *Metrics

	mu     sync.RWMutex
	status Status
}

type RunnerOption func(*Runner)

func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

func NewRunner(logger *slog.Logger, tasks []Task, opts ...RunnerOption) *Runner {
	r := &Runner{
		tasks:  append([]Task(nil), tasks...),
		logger: logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Tasks returns the task names in execution order.
func (r *Runner) Tasks() []string {
	names := make([]string, len(r.tasks))
	for i, t := range r.tasks {
		names[i] = t.Name()
	}
	return names
}

// Run executes every task. The returned error is a *TaskError, or ctx.Err()
// if the context ends between tasks.
func (r *Runner) Run(ctx context.Context) error {
	st := Status{Ran: true}
	defer func() {
		st.FinishedAt = time.Now().UTC()
		r.mu.Lock()
		r.status = st
		r.mu.Unlock()
	}()

	for _, t := range r.tasks {
		if err := ctx.Err(); err != nil {
			st.Err = err
			return err
		}

		name := t.Name()
		log := r.logger.With("task", name)
		log.Info("external task starting")

		start := time.Now()
		err := t.Execute(ctx)
		elapsed := time.Since(start)
		r.metrics.observe(name, elapsed.Seconds(), err)

		if err != nil {
			log.Error("external task failed", "error", err, "duration_ms", elapsed.Milliseconds())
			st.FailedTask = name
			st.Err = &TaskError{Task: name, Err: err}
			return st.Err
		}
		log.Info("external task finished", "duration_ms", elapsed.Milliseconds())
		st.Completed = append(st.Completed, name)
	}
	return nil
}

func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := r.status
	st.Completed = append([]string(nil), st.Completed...)
	return st
}
