package config

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Manager loads configuration from an ordered list of sources, validates it
// and keeps the caller's struct up to date.
//
// Later sources override earlier ones, so the usual order is defaults, file,
// env, cli. A reload that fails to load, bind or validate leaves the current
// configuration untouched. All methods are safe for concurrent use.
type Manager struct {
	sources []ConfigSource
	config  any
	binder  *Binder
	mu      sync.RWMutex
	subs    []chan Event

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options configures the behavior of a Manager.
type Options struct {
	// AutoReload starts a watcher per source and reloads when one fires.
	// Watchers stop when Close is called.
	AutoReload bool
}

// NewManager binds the merged sources into cfg, which must be a pointer to a
// struct, and returns an error if the initial load or validation fails.
//
//	var cfg config.Root
//	mgr, err := config.NewManager(&cfg, config.Options{},
//	    &config.StaticSource{Label: "defaults", Values: config.Defaults()},
//	    &source.FileSource{BasePath: "configs"},
//	    &source.EnvSource{},
//	    &source.CLISource{},
//	)
func NewManager(cfg any, opts Options, sources ...ConfigSource) (*Manager, error) {
	if v := reflect.ValueOf(cfg); v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("config: target must be a non-nil pointer to a struct, got %T", cfg)
	}

	m := &Manager{
		sources: sources,
		config:  cfg,
		binder:  NewBinder(),
	}

	if err := m.Reload(context.Background()); err != nil {
		return nil, err
	}

	if opts.AutoReload {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.startWatchers(ctx)
	}

	return m, nil
}

// Reload loads every source, merges, binds and validates into a fresh value,
// then swaps it into the managed struct. Subscribers are notified only when
// something changed.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		MergeMaps(merged, FoldKeys(vals))
	}

	typ := reflect.TypeOf(m.config).Elem()
	newCfg := reflect.New(typ).Interface()

	if err := m.binder.Bind(merged, newCfg); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	m.mu.Lock()
	oldCfg := reflect.New(typ).Interface()
	reflect.ValueOf(oldCfg).Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(reflect.ValueOf(newCfg).Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(oldCfg, newCfg) {
		m.notify(diffEvent(oldCfg, newCfg))
	}
	return nil
}

// Snapshot copies the current configuration into out, which must be a pointer
// to the same struct type the Manager was created with.
func (m *Manager) Snapshot(out any) error {
	dst := reflect.ValueOf(out)
	src := reflect.ValueOf(m.config).Elem()
	if dst.Kind() != reflect.Pointer || dst.IsNil() || dst.Elem().Type() != src.Type() {
		return fmt.Errorf("config: snapshot target must be *%s, got %T", src.Type(), out)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	dst.Elem().Set(src)
	return nil
}

// Subscribe registers a channel for change events. Sends never block: if ch
// is full the event is dropped, so use a buffered channel. The Manager never
// closes ch.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

// Close stops the watchers started by AutoReload and waits for them to exit.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *Manager) startWatchers(ctx context.Context) {
	for _, src := range m.sources {
		src := src
		ch := make(chan Event)

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := src.Watch(ctx, ch); err != nil {
				return
			}
		}()

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					// A failed reload keeps the previous config.
					_ = m.Reload(ctx)
				}
			}
		}()
	}
}
