// Package bootstrap wires up runtime dependencies shared by the server and
// the seeding command.
package bootstrap

import (
	"fmt"

	"guildhall/internal/cache"
	"guildhall/internal/config"
	"guildhall/internal/database"
	"guildhall/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureDefaults creates the built-in admin, pages, categories, and tags
	// when they are missing.
	EnsureDefaults bool
}

// InitRuntime connects to the database and Redis and optionally runs built-in
// seeding. The Redis client may be nil when the server is unreachable; cache
// and rate limiting degrade in that case.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.EnsureDefaults {
		defaults := seed.DefaultsOptions{
			AdminUsername: cfg.AdminUsername,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}
		if err := seed.EnsureDefaults(db, defaults); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in content: %w", err)
		}
	}

	return db, r, nil
}
