package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/odsharness/config"
)

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }
func (f failingSource) Load(context.Context) (map[string]any, error) {
	return nil, f.err
}
func (f failingSource) Watch(context.Context, chan<- config.Event) error { return nil }

func defaults() config.ConfigSource {
	return &config.StaticSource{Label: "defaults", Values: config.Defaults()}
}

func appSource(values map[string]any) config.ConfigSource {
	base := map[string]any{
		"app": map[string]any{"name": "odsharness", "version": "1.0.0"},
	}
	config.MergeMaps(base, values)
	return &config.StaticSource{Label: "test", Values: base}
}

func TestNewManager_DefaultsApplied(t *testing.T) {
	var cfg config.Root
	_, err := config.NewManager(&cfg, config.Options{}, defaults(), appSource(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/actuator", cfg.Actuator.BasePath)
	assert.True(t, cfg.Observability.Metrics.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, uint64(10), cfg.Storage.Mongo.MaxPoolSize)
	assert.Equal(t, config.DefaultClaimSetName, cfg.Harness.DefaultClaimSetName)
	assert.True(t, cfg.Harness.ShouldRunOnStartup())
}

func TestNewManager_BindsHarnessSeedData(t *testing.T) {
	var cfg config.Root
	_, err := config.NewManager(&cfg, config.Options{}, defaults(), appSource(map[string]any{
		"harness": map[string]any{
			"runOnStartup": "false",
			"vendors": []any{
				map[string]any{
					"name": "Test Vendor",
					"applications": []any{
						map[string]any{
							"educationOrganizationIds": "255901,255902",
							"clients": []any{
								map[string]any{"name": "default", "key": "k", "secret": "s"},
							},
						},
					},
				},
			},
			"claimSets": []any{
				map[string]any{
					"name": "SIS Vendor",
					"resources": []any{
						map[string]any{"name": "students", "actions": []any{"create", "read"}},
					},
				},
			},
		},
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Harness.ShouldRunOnStartup())
	require.Len(t, cfg.Harness.Vendors, 1)
	app := cfg.Harness.Vendors[0].Applications[0]
	assert.Equal(t, "", app.Name)
	assert.Equal(t, []int64{255901, 255902}, app.EducationOrganizationIDs)
	assert.Equal(t, "k", app.Clients[0].Key)
	assert.Equal(t, []string{"create", "read"}, cfg.Harness.ClaimSets[0].Resources[0].Actions)
}

func TestNewManager_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{
			name:   "unknown storage driver",
			values: map[string]any{"storage": map[string]any{"driver": "sqlite"}},
		},
		{
			name: "vendor without name",
			values: map[string]any{"harness": map[string]any{
				"vendors": []any{map[string]any{"namespacePrefixes": []any{"uri://x"}}},
			}},
		},
		{
			name: "invalid claim action",
			values: map[string]any{"harness": map[string]any{
				"claimSets": []any{map[string]any{
					"name":      "Bad",
					"resources": []any{map[string]any{"name": "students", "actions": []any{"publish"}}},
				}},
			}},
		},
		{
			name:   "tls without cert",
			values: map[string]any{"server": map[string]any{"tls": map[string]any{"enabled": true}}},
		},
		{
			name:   "bad log level",
			values: map[string]any{"observability": map[string]any{"logging": map[string]any{"level": "verbose"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Root
			_, err := config.NewManager(&cfg, config.Options{}, defaults(), appSource(tt.values))
			require.Error(t, err)

			var bindErr *config.BindError
			require.ErrorAs(t, err, &bindErr)
			assert.Equal(t, "validate", bindErr.Stage)
		})
	}
}

func TestNewManager_MissingAppInfo(t *testing.T) {
	var cfg config.Root
	_, err := config.NewManager(&cfg, config.Options{}, defaults())
	assert.Error(t, err)
}

func TestNewManager_DecodeError(t *testing.T) {
	var cfg config.Root
	_, err := config.NewManager(&cfg, config.Options{}, defaults(), appSource(map[string]any{
		"server": map[string]any{"readTimeout": "soon"},
	}))

	var bindErr *config.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "decode", bindErr.Stage)
}

func TestNewManager_LoadError(t *testing.T) {
	boom := errors.New("unreadable")
	var cfg config.Root
	_, err := config.NewManager(&cfg, config.Options{}, defaults(), failingSource{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestNewManager_RejectsNonPointer(t *testing.T) {
	_, err := config.NewManager(config.Root{}, config.Options{})
	assert.Error(t, err)
}

func TestManager_ReloadNotifiesChangedSections(t *testing.T) {
	src := &config.StaticSource{Values: map[string]any{
		"app":    map[string]any{"name": "odsharness", "version": "1.0.0"},
		"server": map[string]any{"addr": ":8080"},
	}}

	var cfg config.Root
	mgr, err := config.NewManager(&cfg, config.Options{}, src)
	require.NoError(t, err)

	events := make(chan config.Event, 1)
	mgr.Subscribe(events)

	require.NoError(t, mgr.Reload(context.Background()))
	assert.Empty(t, events, "unchanged reload must not notify")

	src.Values["server"] = map[string]any{"addr": ":9090"}
	require.NoError(t, mgr.Reload(context.Background()))

	select {
	case evt := <-events:
		assert.Equal(t, []string{"Server"}, evt.ChangedKeys)
	default:
		t.Fatal("expected change event")
	}
	assert.Equal(t, ":9090", cfg.Server.Addr)

	var snap config.Root
	require.NoError(t, mgr.Snapshot(&snap))
	assert.Equal(t, cfg, snap)
	assert.Error(t, mgr.Snapshot(&struct{}{}))
}

func TestManager_FailedReloadKeepsConfig(t *testing.T) {
	src := &config.StaticSource{Values: map[string]any{
		"app":    map[string]any{"name": "odsharness", "version": "1.0.0"},
		"server": map[string]any{"addr": ":8080"},
	}}

	var cfg config.Root
	mgr, err := config.NewManager(&cfg, config.Options{}, src)
	require.NoError(t, err)

	src.Values["server"] = map[string]any{"addr": ""}
	require.Error(t, mgr.Reload(context.Background()))
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestManager_ReloadCancelled(t *testing.T) {
	var cfg config.Root
	mgr, err := config.NewManager(&cfg, config.Options{AutoReload: true}, defaults(), appSource(nil))
	require.NoError(t, err)
	defer mgr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mgr.Reload(ctx), context.Canceled)
}

func TestMergeMaps(t *testing.T) {
	dst := map[string]any{
		"server":  map[string]any{"addr": ":8080", "readTimeout": "5s"},
		"storage": "memory",
	}
	config.MergeMaps(dst, map[string]any{
		"server":  map[string]any{"addr": ":9090"},
		"storage": map[string]any{"driver": "mongodb"},
	})

	assert.Equal(t, map[string]any{
		"server":  map[string]any{"addr": ":9090", "readTimeout": "5s"},
		"storage": map[string]any{"driver": "mongodb"},
	}, dst)
}

func TestFoldKeys(t *testing.T) {
	got := config.FoldKeys(map[string]any{
		"server": map[string]any{"readTimeout": "5s"},
		"Server": map[string]any{"Addr": ":1"},
		"harness": map[string]any{
			"vendors": []any{map[string]any{"namespacePrefixes": []any{"uri://Ed-Fi.org"}}},
		},
	})

	assert.Equal(t, map[string]any{
		"server": map[string]any{"readtimeout": "5s", "addr": ":1"},
		"harness": map[string]any{
			"vendors": []any{map[string]any{"namespaceprefixes": []any{"uri://Ed-Fi.org"}}},
		},
	}, got)
}

func TestHarnessConfig_ClaimSetOrDefault(t *testing.T) {
	assert.Equal(t, config.DefaultClaimSetName, config.HarnessConfig{}.ClaimSetOrDefault())
	assert.Equal(t, "Bootstrap", config.HarnessConfig{DefaultClaimSetName: "Bootstrap"}.ClaimSetOrDefault())
}
