// Package stores opens the backend selected by configuration and exposes it
// through the interfaces the engine and the read API consume.
package stores

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	_ "github.com/lib/pq"

	"github.com/joao-fontenele/orderflow-cyclic/internal/catalog"
	"github.com/joao-fontenele/orderflow-cyclic/internal/config"
	"github.com/joao-fontenele/orderflow-cyclic/internal/fsstore"
	"github.com/joao-fontenele/orderflow-cyclic/internal/generator"
	"github.com/joao-fontenele/orderflow-cyclic/internal/memstore"
	"github.com/joao-fontenele/orderflow-cyclic/internal/mongostore"
	"github.com/joao-fontenele/orderflow-cyclic/internal/orders"
	"github.com/joao-fontenele/orderflow-cyclic/internal/telemetry"
	"github.com/joao-fontenele/orderflow-cyclic/internal/templates"
)

// Backend is one configured store. Close releases its connections.
type Backend struct {
	generator.Stores
	Reader orders.Reader
	Close  func(context.Context) error
}

// Open connects to the store named by cfg.StoreDriver. cfg must be valid.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := telemetry.OpenDB(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		repo := orders.NewOrderRepository(db)
		return &Backend{
			Stores: generator.Stores{
				Templates: templates.NewTemplateRepository(db),
				Catalog:   catalog.NewCatalogRepository(db),
				Orders:    repo,
			},
			Reader: repo,
			Close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		store, disconnect, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = disconnect(ctx)
			return nil, fmt.Errorf("create mongo indexes: %w", err)
		}
		return &Backend{
			Stores: generator.Stores{Templates: store, Catalog: store, Orders: store},
			Reader: store,
			Close:  disconnect,
		}, nil

	case config.DriverFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, fmt.Errorf("create firestore client: %w", err)
		}
		store := fsstore.New(client)
		return &Backend{
			Stores: generator.Stores{Templates: store, Catalog: store, Orders: store},
			Reader: store,
			Close:  func(context.Context) error { return client.Close() },
		}, nil

	case config.DriverMemory:
		store := memstore.New()
		if cfg.FixturesFile != "" {
			var err error
			if store, err = memstore.LoadFile(cfg.FixturesFile); err != nil {
				return nil, err
			}
			logger.Info("loaded fixtures", "path", cfg.FixturesFile)
		}
		return &Backend{
			Stores: generator.Stores{Templates: store, Catalog: store, Orders: store},
			Reader: store,
			Close:  func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
