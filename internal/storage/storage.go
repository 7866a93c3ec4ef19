package storage

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/file"
	"github.com/vytor/flashdeck/internal/repository/redis"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
)

// Backend bundles the stores selected by the configuration. Accounts always
// live in SQLite; collections go to the configured backend.
type Backend struct {
	Users       repository.UserRepository
	Collections repository.CollectionStore

	db    *db.DB
	redis *goredis.Client
}

// Open connects every store cfg asks for.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	log := logger.FromContext(ctx).WithPrefix("storage")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	b := &Backend{
		db:    database,
		Users: sqlite.NewUserRepository(database.DB),
	}

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		b.Collections = sqlite.NewCollectionStore(database.DB)
	case config.BackendFile:
		store, err := file.NewCollectionStore(cfg.DataDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Collections = store
	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = client
		b.Collections = redis.NewCollectionStore(client)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	log.Info("collections stored in %s backend", cfg.StorageBackend)
	return b, nil
}

// Ready pings every connected store.
func (b *Backend) Ready(ctx context.Context) error {
	if err := b.db.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if b.redis != nil {
		if err := b.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (b *Backend) Close() {
	log := logger.Default().WithPrefix("storage")
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("closing redis: %v", err)
		}
	}
	if b.db != nil {
		log.Debug("closing database connection")
		if err := b.db.Close(); err != nil {
			log.Warn("closing database: %v", err)
		}
	}
}
