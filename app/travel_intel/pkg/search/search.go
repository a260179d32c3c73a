package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// 可区分的搜索错误类别
var (
	ErrMissingCredentials = errors.New("search credentials missing")
	ErrForbidden          = errors.New("search forbidden")
	ErrQuota              = errors.New("search quota exceeded")
)

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
	// CheckConfig 检查必需的配置（API key、搜索范围标识等）
	CheckConfig() error
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	MaxResults int
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Snippet       string
	Score         float64
	PublishedDate string
}

// StatusError 按 HTTP 状态码归类供应商错误
func StatusError(provider string, status int, body string) error {
	if len(body) > 512 {
		body = body[:512]
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s api error (status %d): %s", ErrForbidden, provider, status, body)
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s api error (status %d): %s", ErrQuota, provider, status, body)
	default:
		return fmt.Errorf("%s api error (status %d): %s", provider, status, body)
	}
}

// Classify 将错误归类为轨迹中的可读描述
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing credentials"
	case errors.Is(err, ErrForbidden):
		return "permission denied (check API key and search engine id)"
	case errors.Is(err, ErrQuota):
		return "quota exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "search failed"
	}
}
