package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"restaurant-frontend/internal/domain"
)

const redisKeyPrefix = "rf:slot:"

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Repository storing each slot under its own key. A zero ttl
// keeps slots until they are deleted; otherwise every write refreshes the ttl.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and verifies connectivity.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *redisRepo) key(profileID, slot string) string {
	return redisKeyPrefix + profileID + ":" + slot
}

func (r *redisRepo) Get(ctx context.Context, profileID, slot string) (string, error) {
	v, err := r.client.Get(ctx, r.key(profileID, slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get slot %s: %w", slot, err)
	}
	return v, nil
}

func (r *redisRepo) Put(ctx context.Context, profileID, slot, value string) error {
	if err := r.client.Set(ctx, r.key(profileID, slot), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("put slot %s: %w", slot, err)
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, profileID, slot string) error {
	if err := r.client.Del(ctx, r.key(profileID, slot)).Err(); err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

func (r *redisRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
