package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/core"
)

const Name = "web"

// Engine returns the gin engine the web module put in the container. Other
// modules call it from Configure to mount routes.
func Engine(c core.Container) *gin.Engine {
	return core.Get[*gin.Engine](c)
}

func Module(opts ...Option) core.Module {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	return &webModule{opts: options}
}

type webModule struct {
	opts   Options
	server *http.Server
	tls    config.TLSConfig
}

func (m *webModule) Name() string        { return Name }
func (m *webModule) DependsOn() []string { return nil }

func (m *webModule) Configure(c core.Container) error {
	cfg := core.Get[config.Root](c)
	l := core.Get[*slog.Logger](c)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(RecoveryProblem(l))
	r.Use(AccessLog(l))
	r.Use(m.opts.Middlewares...)

	for _, reg := range m.opts.Routes {
		reg(r)
	}

	m.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	m.tls = cfg.Server.TLS

	core.Put[*gin.Engine](c, r)
	core.Put[*http.Server](c, m.server)
	return nil
}

func (m *webModule) Start(_ context.Context, c core.Container) error {
	l := core.Get[*slog.Logger](c)
	go func() {
		l.Info("http server starting", "addr", m.server.Addr, "tls", m.tls.Enabled)
		var err error
		if m.tls.Enabled {
			err = m.server.ListenAndServeTLS(m.tls.CertFile, m.tls.KeyFile)
		} else {
			err = m.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", "error", err)
		}
	}()
	return nil
}

func (m *webModule) Stop(ctx context.Context, _ core.Container) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := m.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
