// Package storage picks the backing store for the admin and security
// databases and publishes it in the container.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skekre98/odsharness/actuator"
	"github.com/skekre98/odsharness/admin"
	"github.com/skekre98/odsharness/config"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/security"
	"github.com/skekre98/odsharness/storage/mongostore"
)

const Name = "storage"

const (
	DriverMemory  = "memory"
	DriverMongoDB = "mongodb"
)

type module struct {
	client *mongo.Client
}

func Module() core.Module { return &module{} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return nil }

func (m *module) Configure(c core.Container) error {
	cfg := core.Get[config.Root](c)

	switch cfg.Storage.Driver {
	case "", DriverMemory:
		core.Put[admin.Store](c, admin.NewMemoryStore())
		core.Put[security.Store](c, security.NewMemoryStore())

	case DriverMongoDB:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(cfg.Storage.Mongo))
		defer cancel()

		client, err := mongostore.Connect(ctx, cfg.Storage.Mongo)
		if err != nil {
			return err
		}
		m.client = client

		db := client.Database(cfg.Storage.Mongo.Database)
		core.Put[admin.Store](c, mongostore.NewAdminStore(db))
		core.Put[security.Store](c, mongostore.NewSecurityStore(db))
		actuator.AddHealthCheck(c, pingCheck{client: client})

	default:
		return fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
	return nil
}

func (m *module) Start(ctx context.Context, c core.Container) error {
	if m.client == nil {
		return nil
	}
	cfg := core.Get[config.Root](c)
	l := core.Get[*slog.Logger](c)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg.Storage.Mongo))
	defer cancel()
	if err := m.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("could not ping MongoDB: %w", err)
	}
	l.Info("storage ready", "driver", DriverMongoDB, "database", cfg.Storage.Mongo.Database)
	return nil
}

func (m *module) Stop(ctx context.Context, _ core.Container) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb disconnect: %w", err)
	}
	return nil
}

func connectTimeout(cfg config.MongoConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return 10 * time.Second
}

type pingCheck struct {
	client *mongo.Client
}

func (pingCheck) Name() string { return "mongodb" }

func (p pingCheck) Check(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}
