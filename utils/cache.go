// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"viewingdesk/config"
)

// LockClient is the Redis client used for slot locks. Nil when REDIS_ADDR is unset.
var LockClient *redis.Client

// InitLockCache connects the slot-lock Redis client if an address is configured.
func InitLockCache() {
	if config.AppConfig.RedisAddr == "" {
		return
	}
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LockClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the slot-lock client, or nil when Redis is not configured.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockCache()
	}
	return LockClient
}
