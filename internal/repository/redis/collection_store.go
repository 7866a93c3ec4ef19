package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
)

// KeyPrefix namespaces collection records in a shared Redis database.
const KeyPrefix = "flashdeck:collection:"

// Options holds the Redis connection settings
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and checks that the server answers.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

type collectionStore struct {
	client goredis.Cmdable
}

// NewCollectionStore stores each scope's collection under one key with no
// expiry.
func NewCollectionStore(client goredis.Cmdable) repository.CollectionStore {
	return &collectionStore{client: client}
}

// Key returns the Redis key for scopeKey.
func Key(scopeKey string) string {
	return KeyPrefix + scopeKey
}

func (s *collectionStore) Read(ctx context.Context, scopeKey string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("redis_store")
	log.Debug("reading collection: scope=%s", scopeKey)

	data, err := s.client.Get(ctx, Key(scopeKey)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read collection: %v", err)
		return nil, false, fmt.Errorf("failed to get collection: %w", err)
	}
	return data, true, nil
}

func (s *collectionStore) Write(ctx context.Context, scopeKey string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("redis_store")
	log.Debug("writing collection: scope=%s bytes=%d", scopeKey, len(data))

	if err := s.client.Set(ctx, Key(scopeKey), data, 0).Err(); err != nil {
		log.Error("failed to write collection: %v", err)
		return fmt.Errorf("failed to set collection: %w", err)
	}
	return nil
}
