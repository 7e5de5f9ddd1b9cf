// Package bootstrap wires runtime dependencies (database, Redis, optional
// fixture seeding) for the command-line entry points.
package bootstrap

import (
	"fmt"

	"partyforge/internal/cache"
	"partyforge/internal/config"
	"partyforge/internal/database"
	"partyforge/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// FixturesPath, when set, loads a YAML fixture file after connecting.
	FixturesPath string
}

// InitRuntime connects to DB and Redis and optionally loads fixtures.
// The Redis client may be nil when Redis is unreachable; callers are
// expected to degrade gracefully.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.FixturesPath != "" {
		if err := seed.LoadFixtures(db, opts.FixturesPath); err != nil {
			return nil, nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
	}

	return db, r, nil
}
