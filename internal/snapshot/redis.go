package snapshot

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trainswift/internal/config"
)

// RedisRepository stores one key per slot. Snapshots have no TTL; the
// latest write is the state of record until overwritten.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisClient builds a client from the redis section of the config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func slotKey(slot string) string {
	return fmt.Sprintf("trainswift:snapshot:%s", slot)
}

func (r *RedisRepository) Load(ctx context.Context, slot string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, slotKey(slot)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s from redis: %w", slot, err)
	}
	return val, nil
}

func (r *RedisRepository) Save(ctx context.Context, slot string, data []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, slotKey(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s to redis: %w", slot, err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
