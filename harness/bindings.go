// Package harness wires the integration-test harness: it declares which
// implementations provide the startup tasks and the default application
// creator, resolves them, and runs the tasks when the app starts.
package harness

import (
	"errors"
	"log/slog"

	"github.com/skekre98/odsharness/admin"
	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/externaltask"
	"github.com/skekre98/odsharness/security"
)

// Load declares the harness bindings on b. It only registers; nothing is
// constructed until the bindings are resolved.
//
// The two tasks run in the order they are registered here.
func Load(b core.Builder) {
	core.As[externaltask.Task](b, newUpdateAdminDatabaseTask)
	core.As[externaltask.Task](b, newUpdateSecurityDatabaseTask)
	core.As[admin.ApplicationCreator](b, newDefaultApplicationCreator)
}

// Capabilities is the resolved form of the harness bindings.
type Capabilities struct {
	ExternalTasks      []externaltask.Task
	ApplicationCreator admin.ApplicationCreator
}

// Compose resolves every harness capability from r against c.
func Compose(r *core.Registry, c core.Container) (Capabilities, error) {
	tasks, err := core.ResolveAll[externaltask.Task](r, c)
	if err != nil {
		return Capabilities{}, err
	}
	creator, err := core.Resolve[admin.ApplicationCreator](r, c)
	if err != nil {
		return Capabilities{}, err
	}
	return Capabilities{ExternalTasks: tasks, ApplicationCreator: creator}, nil
}

func newUpdateAdminDatabaseTask(c core.Container) (*admin.UpdateAdminDatabaseTask, error) {
	store, ok := core.Lookup[admin.Store](c)
	if !ok {
		return nil, errors.New("admin store not configured")
	}
	reg, ok := core.Lookup[*core.Registry](c)
	if !ok {
		return nil, errors.New("binding registry not available")
	}
	creator, err := core.Resolve[admin.ApplicationCreator](reg, c)
	if err != nil {
		return nil, err
	}
	cfg := core.Get[config.Root](c)
	return admin.NewUpdateAdminDatabaseTask(store, creator, cfg.Harness, logger(c)), nil
}

func newUpdateSecurityDatabaseTask(c core.Container) (*security.UpdateSecurityDatabaseTask, error) {
	store, ok := core.Lookup[security.Store](c)
	if !ok {
		return nil, errors.New("security store not configured")
	}
	cfg := core.Get[config.Root](c)
	return security.NewUpdateSecurityDatabaseTask(store, cfg.Harness, logger(c)), nil
}

func newDefaultApplicationCreator(c core.Container) (*admin.DefaultApplicationCreator, error) {
	store, ok := core.Lookup[admin.Store](c)
	if !ok {
		return nil, errors.New("admin store not configured")
	}
	cfg := core.Get[config.Root](c)
	return admin.NewDefaultApplicationCreator(store, cfg.Harness.ClaimSetOrDefault()), nil
}

func logger(c core.Container) *slog.Logger {
	if l, ok := core.Lookup[*slog.Logger](c); ok {
		return l
	}
	return slog.Default()
}
