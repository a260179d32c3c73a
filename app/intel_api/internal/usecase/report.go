package usecase

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/repo"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/cache"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

// Runner 生成报告的引擎
type Runner interface {
	RunIntel(ctx context.Context, country string) (*model.IntelReport, []string, error)
}

// ReportUseCase 报告业务逻辑：缓存优先，未命中时运行引擎并保存
type ReportUseCase struct {
	runner Runner
	repo   repo.ReportRepo
	cache  repo.ReportCache
	log    *log.Helper
}

// NewReportUseCase 创建报告业务逻辑实例
func NewReportUseCase(runner Runner, repo repo.ReportRepo, cache repo.ReportCache, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{runner: runner, repo: repo, cache: cache, log: log.NewHelper(logger)}
}

// Result 一次查询的结果
type Result struct {
	Record *storage.Record
	Cached bool
}

// Run 返回某国的报告；fresh 为 true 时跳过缓存
func (uc *ReportUseCase) Run(ctx context.Context, country string, fresh bool) (*Result, error) {
	if !fresh {
		rec, err := uc.cache.Get(ctx, country)
		switch {
		case err == nil:
			return &Result{Record: rec, Cached: true}, nil
		case !errors.Is(err, cache.ErrMiss):
			uc.log.Warnf("读取缓存失败 [%s]: %v", country, err)
		}
	}

	report, trace, err := uc.runner.RunIntel(ctx, country)
	if err != nil {
		return nil, err
	}
	rec := &storage.Record{Report: report, Trace: trace}

	// 调用方超时后依然保存已完成的结果
	saveCtx := context.WithoutCancel(ctx)
	if err := uc.repo.SaveReport(saveCtx, rec); err != nil {
		uc.log.Errorf("保存报告失败 [%s]: %v", country, err)
	}
	if err := uc.cache.Set(saveCtx, rec); err != nil {
		uc.log.Warnf("写入缓存失败 [%s]: %v", country, err)
	}
	return &Result{Record: rec}, nil
}

// Refresh 强制重新生成，用于定时任务
func (uc *ReportUseCase) Refresh(ctx context.Context, country string) error {
	_, err := uc.Run(ctx, country, true)
	return err
}

// Latest 获取最近一次保存的报告
func (uc *ReportUseCase) Latest(ctx context.Context, country string) (*storage.Record, error) {
	if rec, err := uc.cache.Get(ctx, country); err == nil {
		return rec, nil
	}
	return uc.repo.LatestReport(ctx, country)
}
