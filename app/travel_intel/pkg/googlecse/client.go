package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// 单次请求最多返回 10 条
const maxNum = 10

// publishedKeys pagemap.metatags 中常见的发布时间字段
var publishedKeys = []string{
	"article:published_time",
	"og:article:published_time",
	"datepublished",
	"pubdate",
	"date",
}

// Client Google Custom Search JSON API 客户端
type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	// DateRestrict 如 "m1" 表示最近一个月，空则不限制
	DateRestrict string
	client       *http.Client
}

// NewClient 创建客户端，engineID 即 cx 搜索范围标识
func NewClient(apiKey, engineID string) *Client {
	return &Client{
		apiKey:       apiKey,
		engineID:     engineID,
		baseURL:      defaultBaseURL,
		DateRestrict: "m1",
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL 替换 API 地址，用于测试
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

var _ search.Searcher = (*Client)(nil)

// CheckConfig API key 与 cx 缺一不可
func (c *Client) CheckConfig() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: google api key is missing", search.ErrMissingCredentials)
	}
	if c.engineID == "" {
		return fmt.Errorf("%w: google search engine id (cx) is missing", search.ErrMissingCredentials)
	}
	return nil
}

type cseResponse struct {
	Items []cseItem `json:"items"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Pagemap struct {
		Metatags []map[string]string `json:"metatags"`
	} `json:"pagemap"`
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	num := req.MaxResults
	if num <= 0 || num > maxNum {
		num = maxNum
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", req.Query)
	q.Set("num", strconv.Itoa(num))
	if c.DateRestrict != "" {
		q.Set("dateRestrict", c.DateRestrict)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, search.StatusError("google cse", res.StatusCode, string(body))
	}

	var cr cseResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	results := make([]search.Result, 0, len(cr.Items))
	for _, it := range cr.Items {
		results = append(results, search.Result{
			Title:         it.Title,
			URL:           it.Link,
			Snippet:       it.Snippet,
			PublishedDate: publishedFromMeta(it.Pagemap.Metatags),
		})
	}
	return &search.Response{Results: results}, nil
}

func publishedFromMeta(tags []map[string]string) string {
	for _, m := range tags {
		for _, k := range publishedKeys {
			if v := m[k]; v != "" {
				return v
			}
		}
	}
	return ""
}
