package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
)

// Cache stores JSON encoded values by key.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisCache{Client: redis.NewClient(opt), TTL: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, b, c.TTL).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// cachedDetail is the cache representation of Detail; Entry hides the
// species reference from JSON so it is stored separately.
type cachedDetail struct {
	Detail
	SpeciesURL string `json:"species_url"`
}

// CachedProvider serves Detail from Cache before calling Next. ListPage is
// always forwarded. Cache failures degrade to the upstream call.
type CachedProvider struct {
	Next  Provider
	Cache Cache
	Log   *zap.Logger
}

func (p *CachedProvider) ListPage(ctx context.Context, cursor domain.Cursor) (Page, error) {
	return p.Next.ListPage(ctx, cursor)
}

func (p *CachedProvider) Detail(ctx context.Context, id string) (Detail, error) {
	key := "ki3dex:detail:" + strings.TrimSpace(id)

	var cached cachedDetail
	ok, err := p.Cache.Get(ctx, key, &cached)
	if err != nil && p.Log != nil {
		p.Log.Warn("detail cache get", zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok {
		cached.Detail.Entry.SpeciesURL = cached.SpeciesURL
		return cached.Detail, nil
	}

	d, err := p.Next.Detail(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if err := p.Cache.Set(ctx, key, cachedDetail{Detail: d, SpeciesURL: d.Entry.SpeciesURL}); err != nil && p.Log != nil {
		p.Log.Warn("detail cache set", zap.String("key", key), zap.Error(err))
	}
	return d, nil
}
