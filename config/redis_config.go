package config

import (
	"github.com/redis/go-redis/v9"
)

// RedisOptions creates redis.Options for the list cache, overridable via the
// USERSTORE_REDIS_ADDR and USERSTORE_REDIS_DB environment variables.
func RedisOptions() *redis.Options {
	return &redis.Options{
		Addr: String("USERSTORE_REDIS_ADDR", "localhost:6379"),
		DB:   Int("USERSTORE_REDIS_DB", 0),
	}
}
