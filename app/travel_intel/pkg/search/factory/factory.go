package factory

import (
	"fmt"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/googlecse"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/searxng"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
// 缺少凭证时依然返回客户端，由引擎在运行开始时通过 CheckConfig 拒绝
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		// 默认回退逻辑：优先 Google，其次 tavily
		switch {
		case cfg.Search.GoogleCSE.APIKey != "":
			provider = "google_cse"
		case cfg.Search.Tavily.APIKey != "":
			provider = "tavily"
		case cfg.Search.SearXNG.BaseURL != "":
			provider = "searxng"
		default:
			provider = "google_cse"
		}
	}

	switch provider {
	case "google_cse", "google":
		return googlecse.NewClient(cfg.Search.GoogleCSE.APIKey, cfg.Search.GoogleCSE.EngineID), nil
	case "tavily":
		return tavily.NewClient(cfg.Search.Tavily.APIKey), nil
	case "searxng":
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
