package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/cache"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

// Data 数据资源，未配置的部分为 nil
type Data struct {
	store *storage.Storage
	cache *cache.RedisCache
}

// NewData 连接 PostgreSQL 与 Redis；未配置时跳过
func NewData(c *config.Config, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	d := &Data{}

	if c.DB.Host != "" {
		store, err := storage.NewStorage(c.DB)
		if err != nil {
			return nil, nil, err
		}
		d.store = store
		helper.Info("已成功连接到数据库")
	} else {
		helper.Info("未配置数据库信息，报告历史不会被保存")
	}

	if c.Redis.Addr != "" {
		client, err := cache.Conn(context.Background(), c.Redis)
		if err != nil {
			if d.store != nil {
				d.store.Close()
			}
			return nil, nil, err
		}
		d.cache = cache.NewRedisCache(client, durationSeconds(c.Redis.TTL))
		helper.Info("已成功连接到 Redis")
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.store != nil {
			d.store.Close()
		}
		if d.cache != nil {
			d.cache.Close()
		}
	}
	return d, cleanup, nil
}
