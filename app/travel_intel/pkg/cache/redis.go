package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

const keyPrefix = "travel_intel:report:"

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// RedisCache 最近一次报告的缓存
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Conn 连接 Redis 并校验
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, err
	}
	if pong != "PONG" {
		client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

// NewRedisCache 创建缓存
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key 国家对应的缓存键
func Key(country string) string {
	return keyPrefix + strings.ReplaceAll(storage.CountryKey(country), " ", "_")
}

// Get 读取缓存的报告与轨迹
func (c *RedisCache) Get(ctx context.Context, country string) (*storage.Record, error) {
	val, err := c.client.Get(ctx, Key(country)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var rec storage.Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &rec, nil
}

// Set 写入缓存，过期时间为配置的 TTL
func (c *RedisCache) Set(ctx context.Context, rec *storage.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(rec.Report.Country), data, c.ttl).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}
