package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Scrape      ScrapeConfig      `yaml:"scrape" json:"scrape"`
	Pipeline    PipelineConfig    `yaml:"pipeline" json:"pipeline"`
	Settings    SettingsConfig    `yaml:"settings" json:"settings"`
	Schedule    ScheduleConfig    `yaml:"schedule" json:"schedule"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	DB          DBConfig          `yaml:"db" json:"db"`
	Redis       RedisConfig       `yaml:"redis" json:"redis"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	APIKey        string `yaml:"api_key" json:"api_key"`
	PrimaryModel  string `yaml:"primary_model" json:"primary_model"`
	FallbackModel string `yaml:"fallback_model" json:"fallback_model"`
	Timeout       int    `yaml:"timeout" json:"timeout"` // 秒
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider  string          `yaml:"provider" json:"provider"`
	GoogleCSE GoogleCSEConfig `yaml:"google_cse" json:"google_cse"`
	Tavily    TavilyConfig    `yaml:"tavily" json:"tavily"`
	SearXNG   SearXNGConfig   `yaml:"searxng" json:"searxng"`
}

// GoogleCSEConfig Google Custom Search 配置
type GoogleCSEConfig struct {
	APIKey   string `yaml:"api_key" json:"api_key"`
	EngineID string `yaml:"engine_id" json:"engine_id"` // cx，搜索范围标识
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key" json:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// ScrapeConfig 正文抓取配置
type ScrapeConfig struct {
	Renderer  string `yaml:"renderer" json:"renderer"` // http 或 chromedp
	Timeout   int    `yaml:"timeout" json:"timeout"`   // 秒
	MaxChars  int    `yaml:"max_chars" json:"max_chars"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// PipelineConfig 情报流水线配置
type PipelineConfig struct {
	MaxCandidates   int                 `yaml:"max_candidates" json:"max_candidates"`
	RecencyDays     int                 `yaml:"recency_days" json:"recency_days"`
	Categories      []model.Category    `yaml:"categories" json:"categories"`
	RegionalSources []string            `yaml:"regional_sources" json:"regional_sources"`
	LocalSources    map[string][]string `yaml:"local_sources" json:"local_sources"`
	// OfficialSources 仅在未配置设置存储时使用，逗号分隔
	OfficialSources string `yaml:"official_sources" json:"official_sources"`
}

// SettingsConfig 设置存储配置
type SettingsConfig struct {
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

// ScheduleConfig 定时刷新配置
type ScheduleConfig struct {
	Cron      string   `yaml:"cron" json:"cron"`
	Countries []string `yaml:"countries" json:"countries"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps" json:"qps"`
	RPM int `yaml:"rpm" json:"rpm"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Name     string `yaml:"name" json:"name"`
}

// RedisConfig 报告缓存配置
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	TTL      int    `yaml:"ttl" json:"ttl"` // 秒
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 填充未配置项的默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60
	}
	if c.LLM.FallbackModel == "" {
		c.LLM.FallbackModel = c.LLM.PrimaryModel
	}
	if c.Scrape.Renderer == "" {
		c.Scrape.Renderer = "http"
	}
	if c.Scrape.Timeout <= 0 {
		c.Scrape.Timeout = 30
	}
	if c.Scrape.MaxChars <= 0 {
		c.Scrape.MaxChars = 5000
	}
	if c.Pipeline.MaxCandidates <= 0 {
		c.Pipeline.MaxCandidates = 5
	}
	if c.Pipeline.RecencyDays <= 0 {
		c.Pipeline.RecencyDays = 30
	}
	if len(c.Pipeline.Categories) == 0 {
		c.Pipeline.Categories = model.DefaultCategories()
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 6 * 3600
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// OfficialSourceList 解析逗号分隔的官方来源
func (c *Config) OfficialSourceList() []string {
	return SplitList(c.Pipeline.OfficialSources)
}

// SplitList 解析逗号分隔的站点列表，忽略空项
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
