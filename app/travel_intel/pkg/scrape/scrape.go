package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 5 << 20
	// 正文少于该长度视为无效页面
	minContentChars = 100
)

// ErrInsufficientContent 页面可访问但没有可用正文
var ErrInsufficientContent = errors.New("insufficient content")

// Outcome 抓取单个链接的结果
type Outcome struct {
	Success       bool
	Content       string
	PublishedDate string // ISO-8601，尽力而为，可能为空
	Err           error
}

// Fetcher 抓取并提取页面正文
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *Outcome
}

// Options 抓取参数
type Options struct {
	Timeout   time.Duration
	MaxChars  int
	UserAgent string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxChars <= 0 {
		o.MaxChars = 5000
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// HTTPFetcher 直接请求 HTML 并用 readability 提取正文
type HTTPFetcher struct {
	opts   Options
	client *http.Client
}

// NewHTTPFetcher 创建 HTTP 抓取器
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()
	return &HTTPFetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) *Outcome {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return failed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return failed(fmt.Errorf("create request failed: %w", err))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.client.Do(req)
	if err != nil {
		return failed(fmt.Errorf("request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return failed(fmt.Errorf("unexpected status %d", res.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return failed(fmt.Errorf("read body failed: %w", err))
	}

	return extract(body, pageURL, f.opts.MaxChars)
}

// extract 从 HTML 中提取正文与发布时间
func extract(body []byte, pageURL *url.URL, maxChars int) *Outcome {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return failed(fmt.Errorf("parse failed: %w", err))
	}

	content := strings.TrimSpace(article.TextContent)
	// 按字符计数，泰文、老挝文页面按字节截断会切断字符
	if n := utf8.RuneCountInString(content); n < minContentChars {
		return failed(fmt.Errorf("%w: %d chars", ErrInsufficientContent, n))
	}
	if r := []rune(content); len(r) > maxChars {
		content = string(r[:maxChars])
	}

	published := extractPublished(body)
	if published == "" && article.PublishedTime != nil {
		published = article.PublishedTime.Format(time.RFC3339)
	}

	return &Outcome{
		Success:       true,
		Content:       content,
		PublishedDate: published,
	}
}

// metaSelectors 常见的发布时间 meta 标签，按优先级排列
var metaSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[property="og:article:published_time"]`, "content"},
	{`meta[name="article:published_time"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[name="publishdate"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`meta[name="DC.date.issued"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// extractPublished 从 meta 标签中读取发布时间，原样返回
func extractPublished(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, m := range metaSelectors {
		if v, ok := doc.Find(m.selector).First().Attr(m.attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func validateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("URL must have a host")
	}
	return parsed, nil
}

func failed(err error) *Outcome {
	return &Outcome{Success: false, Err: err}
}
