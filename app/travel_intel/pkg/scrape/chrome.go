package scrape

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher 通过无头浏览器渲染页面，适用于依赖 JS 的新闻站点
type ChromeFetcher struct {
	opts Options
}

// NewChromeFetcher 创建无头浏览器抓取器，需要本机安装 Chrome
func NewChromeFetcher(opts Options) *ChromeFetcher {
	return &ChromeFetcher{opts: opts.withDefaults()}
}

var _ Fetcher = (*ChromeFetcher)(nil)

// Fetch implements Fetcher
func (f *ChromeFetcher) Fetch(ctx context.Context, rawURL string) *Outcome {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return failed(err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(f.opts.UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err = chromedp.Run(bctx,
		chromedp.Navigate(pageURL.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return failed(fmt.Errorf("render failed: %w", err))
	}

	return extract([]byte(html), pageURL, f.opts.MaxChars)
}

// New 按渲染方式创建抓取器
func New(renderer string, opts Options) (Fetcher, error) {
	switch renderer {
	case "", "http":
		return NewHTTPFetcher(opts), nil
	case "chromedp":
		return NewChromeFetcher(opts), nil
	default:
		return nil, fmt.Errorf("unknown scrape renderer: %s", renderer)
	}
}
