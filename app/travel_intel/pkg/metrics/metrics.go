package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 来源判定结果
const (
	VerdictVerified    = "verified"
	VerdictUndated     = "undated"
	VerdictStale       = "stale"
	VerdictFetchFailed = "fetch_failed"
)

var (
	// Runs 按结果统计的运行次数：ok / neutral / config_error / invalid_input
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_intel",
		Name:      "runs_total",
		Help:      "Intel pipeline runs by outcome.",
	}, []string{"outcome"})

	// RunDuration 单次运行耗时
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "travel_intel",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full intel run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
	})

	// SearchFailures 按原因统计的搜索失败
	SearchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_intel",
		Name:      "search_failures_total",
		Help:      "Search calls that returned an error or no results.",
	}, []string{"category", "reason"})

	// SourceVerdicts 候选来源的判定
	SourceVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_intel",
		Name:      "source_verdicts_total",
		Help:      "Candidate sources by verification verdict.",
	}, []string{"category", "verdict"})

	// GenerateCalls 生成式模型调用，role 为 primary / fallback
	GenerateCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_intel",
		Name:      "generate_calls_total",
		Help:      "Generative model calls by model role and result.",
	}, []string{"role", "result"})
)
