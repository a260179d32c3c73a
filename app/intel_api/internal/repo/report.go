package repo

import (
	"context"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

// ReportRepo 报告历史仓库接口
type ReportRepo interface {
	// SaveReport 保存一次完成的运行
	SaveReport(ctx context.Context, rec *storage.Record) error
	// LatestReport 获取某国最近一次的报告，不存在时返回 storage.ErrNotFound
	LatestReport(ctx context.Context, country string) (*storage.Record, error)
}

// ReportCache 最近报告缓存接口
type ReportCache interface {
	// Get 未命中时返回 cache.ErrMiss
	Get(ctx context.Context, country string) (*storage.Record, error)
	Set(ctx context.Context, rec *storage.Record) error
}
