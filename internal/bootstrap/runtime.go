// Package bootstrap wires shared process startup: database, cache and
// built-in data required before the API can serve traffic.
package bootstrap

import (
	"fmt"

	"studentconnect/internal/cache"
	"studentconnect/internal/config"
	"studentconnect/internal/database"
	"studentconnect/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedSkillCatalog installs the built-in skill catalog. Safe to run on
	// every startup; catalog creation is idempotent.
	SeedSkillCatalog bool
}

// InitRuntime connects to the database and Redis and optionally seeds
// built-in data. The Redis client may be nil when the cache is unreachable;
// callers degrade to uncached operation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedSkillCatalog {
		if err := seed.Skills(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed skill catalog: %w", err)
		}
	}

	return db, r, nil
}
