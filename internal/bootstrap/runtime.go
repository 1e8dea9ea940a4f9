// Package bootstrap opens the stores selected by configuration and hands out repositories.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coliver/internal/config"
	"coliver/internal/database"
	"coliver/internal/kvstore"
	"coliver/internal/middleware"
	"coliver/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// Runtime owns the open store handles for the lifetime of the process.
type Runtime struct {
	Driver   string
	Users    repository.UserRepository
	Listings repository.ListingRepository
	// Redis is nil when REDIS_URL is unset or unreachable.
	Redis *redis.Client

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// InitRuntime connects to the configured listing store and, when configured, Redis.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	var rt *Runtime

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("document store connection failed: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		rt = &Runtime{
			Driver:   cfg.StoreDriver,
			Users:    repository.NewMongoUserRepository(db),
			Listings: repository.NewMongoListingRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:    client.Disconnect,
		}
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt = NewGormRuntime(db)
		rt.Driver = cfg.StoreDriver
	}

	if cfg.RedisURL != "" {
		rdb, err := kvstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("Redis unavailable, continuing without session revocation",
				slog.String("error", err.Error()),
			)
		} else {
			rt.Redis = rdb
		}
	}

	return rt, nil
}

// NewGormRuntime wraps an already opened GORM database.
func NewGormRuntime(db *gorm.DB) *Runtime {
	return &Runtime{
		Driver:   db.Dialector.Name(),
		Users:    repository.NewUserRepository(db),
		Listings: repository.NewListingRepository(db),
		ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
		close:    func(context.Context) error { return database.Close(db) },
	}
}

// Ping checks the listing store.
func (r *Runtime) Ping(ctx context.Context) error {
	return r.ping(ctx)
}

// Close releases every handle the runtime opened.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.close != nil {
		if err := r.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
