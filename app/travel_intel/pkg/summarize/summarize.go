package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/llm"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/metrics"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/trace"
)

// DefaultMaxContent 每个来源放进提示词的最大字符数
const DefaultMaxContent = 3000

// ErrNoSources 没有可供总结的来源
var ErrNoSources = errors.New("no verified sources to summarize")

// ItemsSchema 摘要输出格式
var ItemsSchema = llm.MustCompileSchema("intel_items", `{
	"type": "object",
	"required": ["items"],
	"properties": {
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["summary", "source"],
				"properties": {
					"summary": {"type": "string"},
					"source": {"type": "string"}
				}
			}
		}
	}
}`)

type itemsOutput struct {
	Items []model.IntelItem `json:"items"`
}

// Request 单个主题的总结请求
type Request struct {
	Category model.Category
	Country  string
	Sources  []model.VerifiedSource
}

// Summarizer 把已校验来源总结为带出处的条目
type Summarizer struct {
	gen        llm.Generator
	primary    string
	fallback   string
	maxContent int
}

// Option 总结器选项
type Option func(*Summarizer)

// WithMaxContent 每个来源截断到 n 个字符
func WithMaxContent(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxContent = n
		}
	}
}

// New 创建总结器；fallback 为空时与 primary 相同
func New(gen llm.Generator, primary, fallback string, opts ...Option) *Summarizer {
	if fallback == "" {
		fallback = primary
	}
	s := &Summarizer{
		gen:        gen,
		primary:    primary,
		fallback:   fallback,
		maxContent: DefaultMaxContent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize 调用主模型，失败后用备用模型重试一次
func (s *Summarizer) Summarize(ctx context.Context, req *Request, sink trace.Sink) ([]model.IntelItem, error) {
	if len(req.Sources) == 0 {
		return nil, ErrNoSources
	}
	prompt := BuildPrompt(req, s.maxContent)

	items, err := WithFallback(ctx,
		s.call(prompt, s.primary, "primary"),
		s.call(prompt, s.fallback, "fallback"),
		func(err error) {
			sink.Addf("primary model %s failed: %v; retrying with fallback model %s", s.primary, err, s.fallback)
			logger.Log.Warnf("主模型总结失败 [%s]，切换备用模型: %v", req.Category.ID, err)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", req.Category.ID, err)
	}
	return attributed(items, req.Sources, sink), nil
}

func (s *Summarizer) call(prompt, modelName, role string) func(context.Context) ([]model.IntelItem, error) {
	return func(ctx context.Context) ([]model.IntelItem, error) {
		raw, err := s.gen.Generate(ctx, prompt, ItemsSchema, modelName)
		if err != nil {
			metrics.GenerateCalls.WithLabelValues(role, "error").Inc()
			return nil, err
		}
		var out itemsOutput
		if err := json.Unmarshal(raw, &out); err != nil {
			metrics.GenerateCalls.WithLabelValues(role, "error").Inc()
			return nil, fmt.Errorf("%w: %v", llm.ErrInvalidOutput, err)
		}
		metrics.GenerateCalls.WithLabelValues(role, "ok").Inc()
		return out.Items, nil
	}
}

// attributed 只保留引用了已校验 URL 的条目，并统一为校验时的 URL
func attributed(items []model.IntelItem, sources []model.VerifiedSource, sink trace.Sink) []model.IntelItem {
	known := make(map[string]string, len(sources))
	for _, src := range sources {
		known[urlKey(src.URL)] = src.URL
	}

	out := make([]model.IntelItem, 0, len(items))
	for _, it := range items {
		summary := strings.TrimSpace(it.Summary)
		if summary == "" {
			sink.Addf("dropped empty summary for %s", it.Source)
			continue
		}
		u, ok := known[urlKey(it.Source)]
		if !ok {
			sink.Addf("dropped item citing unverified source %q", it.Source)
			continue
		}
		out = append(out, model.IntelItem{Summary: summary, Source: u})
	}
	return out
}

func urlKey(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

// BuildPrompt 构造总结提示词
func BuildPrompt(req *Request, maxContent int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a travel safety analyst. Summarize recent information about %s in %s for travellers.\n\n", req.Category.ID, req.Country)
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- Only report facts about %s that match the topic %s. Ignore anything off topic.\n", req.Country, req.Category.Topic)
	sb.WriteString("- Every item must cite exactly one of the source URLs below in its \"source\" field, copied verbatim.\n")
	sb.WriteString("- Do not describe what a website is or what it generally covers. Report only concrete, recent events, warnings or advice.\n")
	sb.WriteString("- If a source contains nothing relevant, produce no item for it.\n")
	sb.WriteString("- Keep each summary to one or two sentences.\n\n")
	sb.WriteString(`Return JSON only, in the form {"items":[{"summary":"...","source":"<url>"}]}. Return {"items":[]} if nothing is relevant.` + "\n\n")

	for i, src := range req.Sources {
		content := src.Content
		if r := []rune(content); len(r) > maxContent {
			content = string(r[:maxContent])
		}
		fmt.Fprintf(&sb, "Source %d: %s\n%s\n\n", i+1, src.URL, content)
	}
	return sb.String()
}
