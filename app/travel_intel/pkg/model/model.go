package model

import (
	"fmt"
	"time"
)

// SourceScope 查询可限定的来源列表
type SourceScope string

const (
	ScopeOfficial SourceScope = "official" // 政府/官方来源，来自设置存储
	ScopeRegional SourceScope = "regional" // 区域性新闻来源，固定
	ScopeLocal    SourceScope = "local"    // 国家本地新闻来源，按国家区分
)

// Category 报告的一个主题维度
type Category struct {
	ID     string        `yaml:"id" json:"id"`
	Topic  string        `yaml:"topic" json:"topic"`
	Scopes []SourceScope `yaml:"scopes" json:"scopes"`
}

// DefaultCategories 默认的主题集合
func DefaultCategories() []Category {
	return []Category{
		{
			ID:     "advisories",
			Topic:  "(travel advisory OR travel warning OR safety alert)",
			Scopes: []SourceScope{ScopeOfficial, ScopeRegional},
		},
		{
			ID:     "scams",
			Topic:  "(tourist scams OR fraud warning)",
			Scopes: []SourceScope{ScopeRegional, ScopeLocal},
		},
		{
			ID:     "theft",
			Topic:  "(pickpocketing OR theft OR robbery tourists)",
			Scopes: []SourceScope{ScopeLocal},
		},
		{
			ID:     "health",
			Topic:  "(health risks OR disease outbreaks)",
			Scopes: []SourceScope{ScopeOfficial, ScopeLocal},
		},
		{
			ID:     "political",
			Topic:  "(protests OR political unrest OR civil unrest)",
			Scopes: []SourceScope{ScopeOfficial, ScopeRegional, ScopeLocal},
		},
	}
}

// SourceLists 一次运行使用的三组站点白名单，运行期间只读
type SourceLists struct {
	Official []string
	Regional []string
	Local    []string
}

// ForScope 返回指定范围的站点列表
func (s SourceLists) ForScope(scope SourceScope) []string {
	switch scope {
	case ScopeOfficial:
		return s.Official
	case ScopeRegional:
		return s.Regional
	case ScopeLocal:
		return s.Local
	default:
		return nil
	}
}

// SearchQuery 某个主题的搜索语句
type SearchQuery struct {
	Category Category
	Text     string
}

// VerifiedSource 通过抓取与时效校验的来源
type VerifiedSource struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// IntelItem 针对单个来源生成的摘要
type IntelItem struct {
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// IntelReport 一次运行的完整输出
type IntelReport struct {
	RunID       string                 `json:"run_id"`
	Country     string                 `json:"country"`
	GeneratedAt time.Time              `json:"generated_at"`
	Categories  map[string][]IntelItem `json:"categories"`
	Sources     []string               `json:"sources"`
	Notice      string                 `json:"notice,omitempty"`
}

// IsNeutral 是否为“未发现重要信息”的默认报告
func (r *IntelReport) IsNeutral() bool {
	return r.Notice != ""
}

// ItemCount 报告中的条目总数
func (r *IntelReport) ItemCount() int {
	n := 0
	for _, items := range r.Categories {
		n += len(items)
	}
	return n
}

// NeutralReport 所有主题都没有可用来源时返回的固定报告
func NeutralReport(country string, categories []Category) *IntelReport {
	cats := make(map[string][]IntelItem, len(categories))
	for _, c := range categories {
		cats[c.ID] = []IntelItem{}
	}
	return &IntelReport{
		Country:    country,
		Categories: cats,
		Sources:    []string{},
		Notice:     fmt.Sprintf("No significant travel safety information found for %s.", country),
	}
}
