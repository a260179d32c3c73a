package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/llm"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/metrics"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/query"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/scrape"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/settings"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/sources"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/summarize"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/trace"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/verify"
)

// MaxCountryLen 国家名的最大长度（字符）
const MaxCountryLen = 100

var (
	// ErrConfig 必需配置缺失，运行在任何外部调用之前中止
	ErrConfig = errors.New("configuration error")
	// ErrInvalidCountry 国家名为空或过长
	ErrInvalidCountry = errors.New("invalid country name")
)

// Deps 引擎依赖的外部服务
type Deps struct {
	Searcher  search.Searcher
	Fetcher   scrape.Fetcher
	Generator llm.Generator
	Settings  settings.Store
	Registry  *sources.Registry
}

// Options 引擎参数，零值使用默认
type Options struct {
	Categories       []model.Category
	PrimaryModel     string
	FallbackModel    string
	MaxCandidates    int
	RecencyThreshold time.Duration
	MaxContent       int
}

// Engine 核心处理引擎
type Engine struct {
	searcher   search.Searcher
	verifier   *verify.Verifier
	summarizer *summarize.Summarizer
	settings   settings.Store
	registry   *sources.Registry
	categories []model.Category
	now        func() time.Time
}

// New 创建引擎实例
func New(d Deps, opts Options) *Engine {
	cats := opts.Categories
	if len(cats) == 0 {
		cats = model.DefaultCategories()
	}
	reg := d.Registry
	if reg == nil {
		reg = sources.NewRegistry(nil, nil)
	}
	store := d.Settings
	if store == nil {
		store = settings.NewStaticStore(nil)
	}
	return &Engine{
		searcher: d.Searcher,
		verifier: verify.New(d.Searcher, d.Fetcher,
			verify.WithMaxCandidates(opts.MaxCandidates),
			verify.WithRecencyThreshold(opts.RecencyThreshold),
		),
		summarizer: summarize.New(d.Generator, opts.PrimaryModel, opts.FallbackModel,
			summarize.WithMaxContent(opts.MaxContent),
		),
		settings:   store,
		registry:   reg,
		categories: uniqueCategories(cats),
		now:        time.Now,
	}
}

// CheckConfig 检查搜索服务的必需配置
func (e *Engine) CheckConfig() error {
	return e.searcher.CheckConfig()
}

// Categories 本引擎使用的主题
func (e *Engine) Categories() []model.Category {
	return append([]model.Category(nil), e.categories...)
}

// Queries 只构造查询，不做任何外部调用，官方来源取自设置存储
func (e *Engine) Queries(ctx context.Context, country string) []model.SearchQuery {
	lists := e.registry.Lists(country, e.officialSources(ctx, trace.Discard))
	out := make([]model.SearchQuery, len(e.categories))
	for i, c := range e.categories {
		out[i] = query.Build(c, strings.TrimSpace(country), lists)
	}
	return out
}

// categoryResult 单个主题分支的输出
type categoryResult struct {
	id       string
	items    []model.IntelItem
	verified int
}

// RunIntel 为一个国家生成报告，返回报告与执行轨迹
func (e *Engine) RunIntel(ctx context.Context, country string) (*model.IntelReport, []string, error) {
	start := time.Now()
	country = strings.TrimSpace(country)
	if country == "" || utf8.RuneCountInString(country) > MaxCountryLen {
		metrics.Runs.WithLabelValues("invalid_input").Inc()
		return nil, nil, fmt.Errorf("%w: must be 1-%d characters", ErrInvalidCountry, MaxCountryLen)
	}

	tr := trace.New()
	if err := e.searcher.CheckConfig(); err != nil {
		tr.Addf("aborted: search is not configured: %v", err)
		metrics.Runs.WithLabelValues("config_error").Inc()
		logger.Log.Errorf("搜索配置错误: %v", err)
		return nil, tr.Lines(), fmt.Errorf("%w: %v", ErrConfig, err)
	}

	runID := uuid.NewString()
	logger.Log.Infof("开始为 [%s] 生成出行情报，共 %d 个主题 (run %s)", country, len(e.categories), runID)
	tr.Addf("run %s: %s, %d categories", runID, country, len(e.categories))

	lists := e.registry.Lists(country, e.officialSources(ctx, tr))
	if len(lists.Local) == 0 {
		tr.Addf("no local sources known for %s", country)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]categoryResult, 0, len(e.categories))
	)
	for _, cat := range e.categories {
		wg.Add(1)
		go func(cat model.Category) {
			defer wg.Done()
			res := e.runCategory(ctx, cat, country, lists, trace.WithPrefix(tr, "["+cat.ID+"]"))
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(cat)
	}
	wg.Wait()

	report, outcome := e.aggregate(runID, country, results, tr)
	metrics.Runs.WithLabelValues(outcome).Inc()
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	tr.Addf("run %s finished in %s: %d items from %d sources", runID, time.Since(start).Round(time.Millisecond), report.ItemCount(), len(report.Sources))
	logger.Log.Infof("[%s] 出行情报生成完成: %d 条, outcome=%s", country, report.ItemCount(), outcome)

	return report, tr.Lines(), nil
}

// runCategory 查询、校验、总结；任何失败都降级为空主题
func (e *Engine) runCategory(ctx context.Context, cat model.Category, country string, lists model.SourceLists, sink trace.Sink) (res categoryResult) {
	res.id = cat.ID
	defer func() {
		if r := recover(); r != nil {
			sink.Addf("category failed: panic: %v", r)
			logger.Log.Errorf("主题 [%s] 处理 panic: %v", cat.ID, r)
			res.items = nil
		}
	}()

	q := query.Build(cat, country, lists)
	verified := e.verifier.Verify(ctx, q, sink)
	res.verified = len(verified)
	if len(verified) == 0 {
		sink.Addf("no verified sources, summarizer not called")
		return res
	}

	items, err := e.summarizer.Summarize(ctx, &summarize.Request{
		Category: cat,
		Country:  country,
		Sources:  verified,
	}, sink)
	if err != nil {
		sink.Addf("summarization failed, category left empty: %v", err)
		logger.Log.Errorf("主题 [%s] 总结失败: %v", cat.ID, err)
		return res
	}
	sink.Addf("%d items from %d verified sources", len(items), len(verified))
	res.items = items
	return res
}

func (e *Engine) aggregate(runID, country string, results []categoryResult, tr *trace.Trace) (*model.IntelReport, string) {
	verified := 0
	for _, r := range results {
		verified += r.verified
	}
	if verified == 0 {
		tr.Addf("no category produced verified sources; returning neutral report")
		report := model.NeutralReport(country, e.categories)
		report.RunID = runID
		report.GeneratedAt = e.now().UTC()
		return report, "neutral"
	}

	report := &model.IntelReport{
		RunID:       runID,
		Country:     country,
		GeneratedAt: e.now().UTC(),
		Categories:  make(map[string][]model.IntelItem, len(e.categories)),
	}
	seen := make(map[string]bool)
	for _, r := range results {
		items := r.items
		if items == nil {
			items = []model.IntelItem{}
		}
		report.Categories[r.id] = items
		for _, it := range items {
			seen[it.Source] = true
		}
	}
	report.Sources = make([]string, 0, len(seen))
	for s := range seen {
		report.Sources = append(report.Sources, s)
	}
	sort.Strings(report.Sources)
	return report, "ok"
}

// officialSources 每次运行读取一次设置，失败时退化为空列表
func (e *Engine) officialSources(ctx context.Context, sink trace.Sink) []string {
	s, err := e.settings.Get(ctx)
	if err != nil {
		sink.Addf("settings unavailable, official sources skipped: %v", err)
		logger.Log.Warnf("读取设置失败: %v", err)
		return nil
	}
	if len(s.OfficialSources) == 0 {
		sink.Addf("no official sources configured")
	}
	return s.OfficialSources
}

func uniqueCategories(cats []model.Category) []model.Category {
	seen := make(map[string]bool, len(cats))
	out := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
