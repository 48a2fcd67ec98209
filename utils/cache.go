// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"smartparking/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs spot claims and other short-lived keys.
	CacheClient *redis.Client
	// QueueClient is the client for the asynq queue database, used for health checks.
	QueueClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func ping(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	ping(CacheClient, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitQueueCache initializes the client for the task queue database.
func InitQueueCache() {
	QueueClient = newRedisClient(config.AppConfig.RedisQueueDB)
	ping(QueueClient, "Queue")
}

func GetQueueClient() *redis.Client {
	if QueueClient == nil {
		InitQueueCache()
	}
	return QueueClient
}
