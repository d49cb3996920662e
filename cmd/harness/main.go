package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/skekre98/odsharness/actuator"
	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/config/source"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/externaltask"
	"github.com/skekre98/odsharness/harness"
	"github.com/skekre98/odsharness/logging"
	"github.com/skekre98/odsharness/storage"
	"github.com/skekre98/odsharness/web"
)

func main() {
	// 1) config: defaults < file < env < flags
	var cfg config.Root
	mgr, err := config.NewManager(&cfg, config.Options{},
		&config.StaticSource{Label: "defaults", Values: config.Defaults()},
		&source.FileSource{BasePath: envOr("APP_CONFIG_DIR", "configs"), Profile: os.Getenv("APP_PROFILE")},
		&source.EnvSource{},
		&source.CLISource{},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	defer mgr.Close()

	// 2) logging
	logger := logging.New(cfg.Observability.Logging).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// 3) compose the app
	app := core.NewApp(
		logger,
		web.Module(),
		actuator.Module(),
		storage.Module(),
		harness.Module(),
	)

	// 4) seed shared objects into the container
	core.Put[config.Root](app.Container, cfg)
	core.Put[*slog.Logger](app.Container, logger)

	// 5) run
	if err := app.Run(context.Background()); err != nil {
		var taskErr *externaltask.TaskError
		if errors.As(err, &taskErr) {
			logger.Error("external task failed", "task", taskErr.Task, "error", taskErr.Err)
		} else {
			logger.Error("app error", "error", err)
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
