package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/web"
)

const Name = "actuator"

const healthTimeout = 5 * time.Second

// HealthCheck contributes to GET {basePath}/health.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

type checksKey struct{}

// AddHealthCheck registers hc with the actuator. Call it from Configure;
// checks are read per request so modules configured after the actuator can
// still add theirs.
func AddHealthCheck(c core.Container, hc HealthCheck) {
	checks, _ := c.Get(checksKey{})
	list, _ := checks.([]HealthCheck)
	c.Set(checksKey{}, append(list, hc))
}

func healthChecks(c core.Container) []HealthCheck {
	checks, _ := c.Get(checksKey{})
	list, _ := checks.([]HealthCheck)
	return list
}

type module struct{}

func Module() core.Module { return &module{} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c core.Container) error {
	engine := web.Engine(c)
	cfg := core.Get[config.Root](c)

	group := engine.Group(cfg.Actuator.BasePath)

	group.GET("/health", func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
		defer cancel()

		status, code := "UP", http.StatusOK
		results := []gin.H{}
		for _, hc := range healthChecks(c) {
			res := gin.H{"name": hc.Name(), "status": "UP"}
			if err := hc.Check(checkCtx); err != nil {
				res["status"] = "DOWN"
				res["error"] = err.Error()
				status, code = "DOWN", http.StatusServiceUnavailable
			}
			results = append(results, res)
		}
		ctx.JSON(code, gin.H{"status": status, "checks": results})
	})

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    cfg.App.Name,
				"version": cfg.App.Version,
			},
			"storage": gin.H{
				"driver": cfg.Storage.Driver,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	group.GET("/bindings", func(ctx *gin.Context) {
		out := []gin.H{}
		if reg, ok := core.Lookup[*core.Registry](c); ok {
			for _, b := range reg.Bindings() {
				out = append(out, gin.H{
					"capability":     b.Capability.String(),
					"implementation": b.Implementation.String(),
				})
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"bindings": out})
	})

	if cfg.Observability.Metrics.Enabled {
		path := cfg.Observability.Metrics.Path
		if path == "" {
			path = strings.TrimSuffix(cfg.Actuator.BasePath, "/") + "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	return nil
}

func (m *module) Start(_ context.Context, _ core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ core.Container) error  { return nil }
