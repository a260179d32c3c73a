package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/repo"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/cache"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

// NewReportRepo 报告历史仓库
func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) SaveReport(ctx context.Context, rec *storage.Record) error {
	if r.data.store == nil {
		return nil
	}
	return r.data.store.SaveReport(ctx, rec.Report, rec.Trace)
}

func (r *reportRepo) LatestReport(ctx context.Context, country string) (*storage.Record, error) {
	if r.data.store == nil {
		return nil, storage.ErrNotFound
	}
	return r.data.store.LatestReport(ctx, country)
}

type reportCache struct {
	data *Data
}

// NewReportCache 报告缓存，未配置 Redis 时始终未命中
func NewReportCache(data *Data) repo.ReportCache {
	return &reportCache{data: data}
}

func (c *reportCache) Get(ctx context.Context, country string) (*storage.Record, error) {
	if c.data.cache == nil {
		return nil, cache.ErrMiss
	}
	return c.data.cache.Get(ctx, country)
}

func (c *reportCache) Set(ctx context.Context, rec *storage.Record) error {
	if c.data.cache == nil {
		return nil
	}
	return c.data.cache.Set(ctx, rec)
}

func durationSeconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
