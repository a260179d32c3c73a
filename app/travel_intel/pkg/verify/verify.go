package verify

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/metrics"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/scrape"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/trace"
)

const (
	DefaultMaxCandidates    = 5
	DefaultRecencyThreshold = 30 * 24 * time.Hour
)

// Verifier 搜索候选来源并逐个抓取校验
type Verifier struct {
	searcher         search.Searcher
	fetcher          scrape.Fetcher
	maxCandidates    int
	recencyThreshold time.Duration
	now              func() time.Time
}

// Option 校验器选项
type Option func(*Verifier)

// WithMaxCandidates 每个主题最多抓取的候选数
func WithMaxCandidates(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.maxCandidates = n
		}
	}
}

// WithRecencyThreshold 发布时间早于该阈值的来源被丢弃
func WithRecencyThreshold(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.recencyThreshold = d
		}
	}
}

// WithClock 替换时间源，用于测试
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// New 创建校验器
func New(searcher search.Searcher, fetcher scrape.Fetcher, opts ...Option) *Verifier {
	v := &Verifier{
		searcher:         searcher,
		fetcher:          fetcher,
		maxCandidates:    DefaultMaxCandidates,
		recencyThreshold: DefaultRecencyThreshold,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify 返回通过抓取与时效校验的来源；任何失败都只记录，不返回错误
func (v *Verifier) Verify(ctx context.Context, q model.SearchQuery, sink trace.Sink) []model.VerifiedSource {
	cat := q.Category.ID
	sink.Addf("searching: %s", q.Text)

	resp, err := v.searcher.Search(ctx, &search.Request{
		Query:      q.Text,
		Topic:      "news",
		MaxResults: v.maxCandidates,
	})
	if err != nil {
		reason := search.Classify(err)
		sink.Addf("search failed (%s): %v", reason, err)
		metrics.SearchFailures.WithLabelValues(cat, reason).Inc()
		logger.Log.Warnf("搜索失败 [%s]: %v", cat, err)
		return nil
	}
	if resp == nil || len(resp.Results) == 0 {
		sink.Addf("search returned no results")
		metrics.SearchFailures.WithLabelValues(cat, "no results").Inc()
		return nil
	}

	candidates := resp.Results
	if len(candidates) > v.maxCandidates {
		candidates = candidates[:v.maxCandidates]
	}
	sink.Addf("checking %d of %d search results", len(candidates), len(resp.Results))

	cutoff := v.now().Add(-v.recencyThreshold)
	var verified []model.VerifiedSource
	// 逐个抓取，限制对抓取端的并发压力
	for _, c := range candidates {
		out := v.fetcher.Fetch(ctx, c.URL)
		if out == nil || !out.Success {
			var ferr error
			if out != nil {
				ferr = out.Err
			}
			sink.Addf("skipped %s: fetch failed: %v", c.URL, ferr)
			metrics.SourceVerdicts.WithLabelValues(cat, metrics.VerdictFetchFailed).Inc()
			continue
		}

		raw := out.PublishedDate
		if raw == "" {
			raw = c.PublishedDate
		}
		switch published, ok := parseDate(raw); {
		case raw == "":
			sink.Addf("warning: no publish date for %s, including anyway", c.URL)
			metrics.SourceVerdicts.WithLabelValues(cat, metrics.VerdictUndated).Inc()
		case !ok:
			sink.Addf("warning: unparsable publish date %q for %s, including anyway", raw, c.URL)
			metrics.SourceVerdicts.WithLabelValues(cat, metrics.VerdictUndated).Inc()
		case published.Before(cutoff):
			sink.Addf("discarded %s: published %s, older than %s", c.URL, published.Format(time.DateOnly), humanDays(v.recencyThreshold))
			metrics.SourceVerdicts.WithLabelValues(cat, metrics.VerdictStale).Inc()
			continue
		default:
			metrics.SourceVerdicts.WithLabelValues(cat, metrics.VerdictVerified).Inc()
		}

		sink.Addf("verified %s", c.URL)
		verified = append(verified, model.VerifiedSource{Content: out.Content, URL: c.URL})
	}

	sink.Addf("%d verified sources", len(verified))
	return verified
}

// parseDate 先按 RFC 3339 解析，再使用宽松解析
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func humanDays(d time.Duration) string {
	return strconv.Itoa(int(d/(24*time.Hour))) + " days"
}
