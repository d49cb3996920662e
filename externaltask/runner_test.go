package externaltask_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/odsharness/externaltask"
)

type stubTask struct {
	name  string
	err   error
	calls *[]string
}

func (s stubTask) Name() string { return s.name }

func (s stubTask) Execute(context.Context) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_RunsInOrder(t *testing.T) {
	var calls []string
	r := externaltask.NewRunner(quietLogger(), []externaltask.Task{
		stubTask{name: "first", calls: &calls},
		stubTask{name: "second", calls: &calls},
	})

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, []string{"first", "second"}, r.Tasks())

	st := r.Status()
	assert.True(t, st.Ran)
	assert.Equal(t, []string{"first", "second"}, st.Completed)
	assert.NoError(t, st.Err)
	assert.False(t, st.FinishedAt.IsZero())
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := externaltask.NewRunner(quietLogger(), []externaltask.Task{
		stubTask{name: "first", calls: &calls},
		stubTask{name: "second", err: boom, calls: &calls},
		stubTask{name: "third", calls: &calls},
	})

	err := r.Run(context.Background())
	require.ErrorIs(t, err, boom)

	var taskErr *externaltask.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "second", taskErr.Task)
	assert.Equal(t, []string{"first", "second"}, calls)

	st := r.Status()
	assert.Equal(t, "second", st.FailedTask)
	assert.Equal(t, []string{"first"}, st.Completed)
	assert.ErrorIs(t, st.Err, boom)
}

func TestRunner_CancelledContext(t *testing.T) {
	var calls []string
	r := externaltask.NewRunner(quietLogger(), []externaltask.Task{stubTask{name: "first", calls: &calls}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestRunner_StatusBeforeRun(t *testing.T) {
	r := externaltask.NewRunner(quietLogger(), nil)
	st := r.Status()
	assert.False(t, st.Ran)
	assert.NoError(t, st.Err)
}

func TestRunner_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := externaltask.NewMetrics(reg)
	require.NoError(t, err)

	var calls []string
	r := externaltask.NewRunner(quietLogger(), []externaltask.Task{
		stubTask{name: "ok", calls: &calls},
		stubTask{name: "bad", err: errors.New("nope"), calls: &calls},
	}, externaltask.WithMetrics(m))
	_ = r.Run(context.Background())

	expected := `
# HELP odsharness_external_task_runs_total External task executions by task and outcome.
# TYPE odsharness_external_task_runs_total counter
odsharness_external_task_runs_total{outcome="failure",task="bad"} 1
odsharness_external_task_runs_total{outcome="success",task="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "odsharness_external_task_runs_total"))
	n, err := testutil.GatherAndCount(reg, "odsharness_external_task_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := externaltask.NewMetrics(reg)
	require.NoError(t, err)

	_, err = externaltask.NewMetrics(reg)
	assert.NoError(t, err)
}
