package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skekre98/odsharness/actuator"
	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/externaltask"
	"github.com/skekre98/odsharness/storage"
	"github.com/skekre98/odsharness/web"
)

const Name = "harness"

type Option func(*module)

// WithRegisterer sets where task metrics are registered. Defaults to
// prometheus.DefaultRegisterer, which the actuator serves.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *module) { m.registerer = reg }
}

type module struct {
	registerer prometheus.Registerer
	runner     *externaltask.Runner
}

func Module(opts ...Option) core.Module {
	m := &module{registerer: prometheus.DefaultRegisterer}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *module) Name() string { return Name }
func (m *module) DependsOn() []string {
	return []string{storage.Name, web.Name, actuator.Name}
}

func (m *module) Load(b core.Builder) { Load(b) }

func (m *module) Configure(c core.Container) error {
	caps, err := Compose(core.Get[*core.Registry](c), c)
	if err != nil {
		return fmt.Errorf("compose harness: %w", err)
	}

	metrics, err := externaltask.NewMetrics(m.registerer)
	if err != nil {
		return fmt.Errorf("register task metrics: %w", err)
	}

	m.runner = externaltask.NewRunner(core.Get[*slog.Logger](c), caps.ExternalTasks, externaltask.WithMetrics(metrics))
	core.Put[*externaltask.Runner](c, m.runner)
	core.Put[Capabilities](c, caps)

	mountRoutes(web.Engine(c), c)
	actuator.AddHealthCheck(c, runnerCheck{runner: m.runner})
	return nil
}

func (m *module) Start(ctx context.Context, c core.Container) error {
	cfg := core.Get[config.Root](c)
	l := core.Get[*slog.Logger](c)

	if !cfg.Harness.ShouldRunOnStartup() {
		l.Info("external tasks skipped", "tasks", m.runner.Tasks())
		return nil
	}
	return m.runner.Run(ctx)
}

func (m *module) Stop(_ context.Context, _ core.Container) error { return nil }

// runnerCheck reports DOWN when the last task run failed.
type runnerCheck struct {
	runner *externaltask.Runner
}

func (runnerCheck) Name() string { return "externalTasks" }

func (r runnerCheck) Check(context.Context) error {
	return r.runner.Status().Err
}
