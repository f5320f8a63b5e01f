// Package bootstrap assembles the service from configuration. It is shared by
// the HTTP server and the command-line tool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/database"
	"github.com/saturnino-fabrica-de-software/facegate/internal/face"
	"github.com/saturnino-fabrica-de-software/facegate/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
	"github.com/saturnino-fabrica-de-software/facegate/internal/snapshot"
)

// App holds the wired components. Close releases the store connection.
type App struct {
	Store     repository.UserStore
	Snapshots snapshot.Store
	Service   *service.FaceService

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, closeStore, err := NewUserStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	snapshots, err := NewSnapshotStore(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	encoder, err := face.NewFaceEncoder(cfg)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("create face encoder: %w", err)
	}

	logger.Info("components ready",
		"store", cfg.StoreBackend,
		"snapshots", cfg.SnapshotBackend,
		"provider", cfg.ProviderType,
	)

	return &App{
		Store:     store,
		Snapshots: snapshots,
		Service:   service.NewFaceService(store, matcher.New(store), encoder, snapshots, logger),
		closers:   []func(){closeStore},
	}, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewUserStore opens the configured backend. The returned func releases it.
func NewUserStore(ctx context.Context, cfg *config.Config) (repository.UserStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendFile, "":
		store, err := repository.NewFileStore(cfg.UserDataFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case config.StoreBackendPostgres:
		pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect user store: %w", err)
		}
		return repository.NewUserRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func NewSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotBackendLocal, "":
		return snapshot.NewLocal(cfg.ImageDir), nil

	case config.SnapshotBackendS3:
		store, err := snapshot.NewS3(ctx, snapshot.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 snapshot store: %w", err)
		}
		return store, nil

	default:
		return nil, errors.New("unknown snapshot backend " + cfg.SnapshotBackend)
	}
}
