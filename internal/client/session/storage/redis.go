package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the slot in a shared Redis instance, for kiosk deployments
// where several client processes share one signed-in operator.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis stores the token under prefix+slot. An empty prefix uses the slot
// name alone.
func NewRedis(client *redis.Client, prefix, slot string) *Redis {
	return &Redis{client: client, key: prefix + slot}
}

func (r *Redis) Load(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

// Save stores the token without expiry; the server decides validity.
func (r *Redis) Save(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.key, token, 0).Err()
}

func (r *Redis) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
