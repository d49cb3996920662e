package source

import (
	"context"
	"os"
	"strings"

	"github.com/skekre98/odsharness/config"
)

// DefaultEnvPrefix is used when EnvSource.Prefix is empty.
const DefaultEnvPrefix = "ODSHARNESS_"

// EnvSource loads configuration from environment variables that start with
// Prefix. The rest of the name is lowercased and split on underscores to form
// nested sections:
//
//	ODSHARNESS_STORAGE_DRIVER=mongodb       -> {storage: {driver: "mongodb"}}
//	ODSHARNESS_STORAGE_MONGO_URI=mongodb:// -> {storage: {mongo: {uri: "mongodb://"}}}
//	ODSHARNESS_SERVER_ADDR=:9090            -> {server: {addr: ":9090"}}
//
// Values stay strings; the binder converts them. When a name is both a leaf
// and a section (ODSHARNESS_DB and ODSHARNESS_DB_HOST) whichever is seen first
// wins and the other is skipped.
type EnvSource struct {
	Prefix string

	// Environ overrides os.Environ, mainly for tests.
	Environ func() []string
}

func (e *EnvSource) Name() string { return "env" }

func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}

	result := make(map[string]any)
	for _, kv := range environ() {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}

		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		if key == "" {
			continue
		}
		setNestedValue(result, strings.Split(key, "_"), value)
	}
	return result, nil
}

// Watch is a no-op; the environment is fixed for the life of the process.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		existing, exists := current[segment]
		if !exists {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
			continue
		}
		nested, ok := existing.(map[string]any)
		if !ok {
			// leaf already set at this path
			return
		}
		current = nested
	}
}
