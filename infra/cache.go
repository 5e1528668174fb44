package infra

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plumstack/ostack-console/config"
)

type RedisClient struct {
	Client *redis.Client
}

func InitRedisClient(cfg *config.EnvConfig) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	log.Println("Connected to Redis:", cfg.Redis.Host+":"+cfg.Redis.Port)

	return &RedisClient{Client: client}
}

// Acquire takes the per-resource reconciliation lock. It reports false when
// another orchestration currently holds the key.
func (r *RedisClient) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, "lock:"+key, 1, ttl).Result()
}

func (r *RedisClient) Release(ctx context.Context, key string) error {
	return r.Client.Del(ctx, "lock:"+key).Err()
}
