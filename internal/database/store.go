package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-mobile-core/internal/config"
	"github.com/stemsi/exstem-mobile-core/pkg/store"
)

// NewStore creates the key-value store selected by cfg.StoreBackend.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return store.NewMemoryStore(), nil
	case config.StoreBackendRedis:
		return store.NewRedisStore(ctx, cfg.RedisURL, log)
	case config.StoreBackendSQLite:
		return store.NewSQLiteStore(ctx, cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.StoreBackend)
	}
}
