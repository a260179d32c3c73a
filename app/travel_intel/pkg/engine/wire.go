package engine

import (
	"fmt"
	"time"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/llm"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/scrape"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search/factory"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/settings"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/sources"
)

// NewFromConfig 按配置组装引擎，返回的 cleanup 关闭设置存储
func NewFromConfig(cfg *config.Config) (*Engine, func(), error) {
	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	fetcher, err := scrape.New(cfg.Scrape.Renderer, scrape.Options{
		Timeout:   time.Duration(cfg.Scrape.Timeout) * time.Second,
		MaxChars:  cfg.Scrape.MaxChars,
		UserAgent: cfg.Scrape.UserAgent,
	})
	if err != nil {
		return nil, nil, err
	}

	official := cfg.OfficialSourceList()
	var store settings.Store = settings.NewStaticStore(official)
	cleanup := func() {}
	if cfg.Settings.SQLitePath != "" {
		db, err := settings.OpenSQLite(cfg.Settings.SQLitePath, official)
		if err != nil {
			return nil, nil, fmt.Errorf("设置存储初始化失败: %w", err)
		}
		store = db
		cleanup = func() { db.Close() }
	}

	e := New(Deps{
		Searcher:  searcher,
		Fetcher:   fetcher,
		Generator: llm.NewEinoGenerator(cfg.LLM, cfg.Concurrency),
		Settings:  store,
		Registry:  sources.NewRegistry(cfg.Pipeline.RegionalSources, cfg.Pipeline.LocalSources),
	}, Options{
		Categories:       cfg.Pipeline.Categories,
		PrimaryModel:     cfg.LLM.PrimaryModel,
		FallbackModel:    cfg.LLM.FallbackModel,
		MaxCandidates:    cfg.Pipeline.MaxCandidates,
		RecencyThreshold: time.Duration(cfg.Pipeline.RecencyDays) * 24 * time.Hour,
	})
	return e, cleanup, nil
}
