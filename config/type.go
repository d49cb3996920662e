package config

import "context"

// ConfigSource is one layer of configuration: a file, the environment,
// command-line flags or a fixed map.
//
// Load must be safe for concurrent use and must return a map the caller may
// mutate. Nested sections are represented as map[string]any.
//
// Watch is optional. Sources that cannot detect changes return nil right away.
// Sources that can should send on ch until ctx is done, and must not close ch.
type ConfigSource interface {
	Load(ctx context.Context) (map[string]any, error)
	Watch(ctx context.Context, ch chan<- Event) error
	// Name is used in error messages and logs, e.g. "file", "env", "cli".
	Name() string
}

// Event is sent to subscribers when a reload changes the configuration.
type Event struct {
	// ChangedKeys holds the top-level struct field names that differ,
	// e.g. ["Harness"] when only seed data changed.
	ChangedKeys []string

	OldConfig any
	NewConfig any
}
