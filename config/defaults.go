package config

import (
	"context"
	"maps"
)

const DefaultClaimSetName = "SIS Vendor"

// Defaults returns the baseline configuration. It is meant to be the first
// source handed to NewManager so files, env and flags can override it.
func Defaults() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"addr":         ":8080",
			"readTimeout":  "10s",
			"writeTimeout": "10s",
			"idleTimeout":  "60s",
		},
		"actuator": map[string]any{
			"basePath": "/actuator",
		},
		"observability": map[string]any{
			"metrics": map[string]any{
				"enabled": true,
				"path":    "/actuator/metrics",
			},
			"logging": map[string]any{
				"level":  "info",
				"format": "text",
			},
		},
		"storage": map[string]any{
			"driver": "memory",
			"mongo": map[string]any{
				"database":       "odsharness",
				"maxPoolSize":    10,
				"connectTimeout": "10s",
			},
		},
		"harness": map[string]any{
			"defaultClaimSetName": DefaultClaimSetName,
		},
	}
}

// StaticSource serves a fixed map. Useful for defaults and tests.
type StaticSource struct {
	Label  string
	Values map[string]any
}

func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s *StaticSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return deepCopy(s.Values), nil
}

func (s *StaticSource) Watch(ctx context.Context, ch chan<- Event) error { return nil }

func deepCopy(src map[string]any) map[string]any {
	out := maps.Clone(src)
	if out == nil {
		return map[string]any{}
	}
	for k, v := range out {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
		}
	}
	return out
}
