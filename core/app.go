package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

// App is the composition root: it owns the container and the binding
// registry and drives every module through load, configure, start and stop.
type App struct {
	Modules   []Module
	Container Container
	Registry  *Registry
	Logger    *slog.Logger

	started []Module
}

func NewApp(logger *slog.Logger, mods ...Module) *App {
	a := &App{
		Modules:   mods,
		Container: NewContainer(),
		Registry:  NewRegistry(),
		Logger:    logger,
	}
	Put[*Registry](a.Container, a.Registry)
	return a
}

// Run boots the app, blocks until ctx is done or SIGINT/SIGTERM arrives, then
// shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Boot(ctx); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-ctx.Done():
	case sig := <-stop:
		a.Logger.Info("signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Boot orders modules by dependency, loads their bindings, configures them
// and starts them. If a module fails to start, the ones already started are
// stopped before the error is returned.
func (a *App) Boot(ctx context.Context) error {
	order, err := topoSort(a.Modules)
	if err != nil {
		return err
	}

	for _, m := range order {
		if bm, ok := m.(BindingModule); ok {
			bm.Load(a.Registry)
		}
	}
	if err := a.Registry.Err(); err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	a.Logger.Debug("bindings loaded", "count", len(a.Registry.Bindings()))

	// Configure may acquire resources (a database client), so modules that
	// configured before a failure are stopped too.
	var configured []Module
	for _, m := range order {
		if err := m.Configure(a.Container); err != nil {
			cfgErr := fmt.Errorf("configure %s: %w", m.Name(), err)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Join(cfgErr, a.stop(shutdownCtx, configured))
		}
		configured = append(configured, m)
	}

	for _, m := range order {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, a.Container); err != nil {
			startErr := fmt.Errorf("start %s: %w", m.Name(), err)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Join(startErr, a.Shutdown(shutdownCtx))
		}
		a.started = append(a.started, m)
	}
	return nil
}

// Shutdown stops started modules in reverse order and returns the first error.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.stop(ctx, a.started)
	a.started = nil
	return err
}

func (a *App) stop(ctx context.Context, mods []Module) error {
	var firstErr error
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(ctx, a.Container); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.Name(), err)
		}
	}
	return firstErr
}

func topoSort(mods []Module) ([]Module, error) {
	nameToMod := map[string]Module{}
	for _, m := range mods {
		if _, dup := nameToMod[m.Name()]; dup {
			return nil, errors.New("duplicate module name: " + m.Name())
		}
		nameToMod[m.Name()] = m
	}
	visited := map[string]bool{}
	temp := map[string]bool{}
	var out []Module
	var visit func(string) error

	visit = func(n string) error {
		if temp[n] {
			return errors.New("cycle detected at module " + n)
		}
		if visited[n] {
			return nil
		}
		temp[n] = true
		m := nameToMod[n]
		for _, d := range m.DependsOn() {
			if _, ok := nameToMod[d]; !ok {
				return errors.New("missing dependency: " + n + " depends on " + d)
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		visited[n] = true
		temp[n] = false
		out = append(out, m)
		return nil
	}

	// Make iteration order stable.
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
	}
	sort.Strings(names)

	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
