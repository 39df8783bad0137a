package favorite

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKey = "ki3dex:" + Key

type RedisStore struct {
	client *redis.Client
}

func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	id, err := s.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *RedisStore) Set(ctx context.Context, id string) error {
	return s.client.Set(ctx, redisKey, id, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, redisKey).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.client.Close() }
