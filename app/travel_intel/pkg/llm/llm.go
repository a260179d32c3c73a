package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
)

// ErrInvalidOutput 模型输出不是合法 JSON 或不满足 Schema
var ErrInvalidOutput = errors.New("invalid model output")

const systemPrompt = "你是一个 JSON 生成器。请只输出 JSON 字符串，不要包含任何 markdown 标记。"

// Generator 生成式文本服务
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema, model string) (json.RawMessage, error)
}

// chatModel eino ChatModel 中用到的部分
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// EinoGenerator 基于 eino OpenAI 兼容接口的实现，每个模型名惰性创建一个客户端
type EinoGenerator struct {
	cfg      config.LLMConfig
	limiter  *rate.Limiter
	newModel func(ctx context.Context, name string) (chatModel, error)

	mu     sync.Mutex
	models map[string]chatModel
}

// NewEinoGenerator 创建生成器
func NewEinoGenerator(cfg config.LLMConfig, conc config.ConcurrencyConfig) *EinoGenerator {
	g := &EinoGenerator{
		cfg:     cfg,
		limiter: newLimiter(conc),
		models:  make(map[string]chatModel),
	}
	g.newModel = g.openaiModel
	return g
}

func newLimiter(conc config.ConcurrencyConfig) *rate.Limiter {
	rpm, burst := conc.RPM, conc.QPS
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

func (g *EinoGenerator) openaiModel(ctx context.Context, name string) (chatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: g.cfg.BaseURL,
		APIKey:  g.cfg.APIKey,
		Model:   name,
		Timeout: time.Duration(g.cfg.Timeout) * time.Second,
	})
}

func (g *EinoGenerator) model(ctx context.Context, name string) (chatModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cm, ok := g.models[name]; ok {
		return cm, nil
	}
	cm, err := g.newModel(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败 [%s]: %w", name, err)
	}
	g.models[name] = cm
	return cm, nil
}

// Generate implements Generator，不做内部重试，失败交由调用方的降级策略处理
func (g *EinoGenerator) Generate(ctx context.Context, prompt string, sch *Schema, modelName string) (json.RawMessage, error) {
	if modelName == "" {
		return nil, errors.New("model name is empty")
	}
	cm, err := g.model(ctx, modelName)
	if err != nil {
		return nil, err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: prompt},
	}
	start := time.Now()
	resp, err := cm.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate [%s]: %w", modelName, err)
	}
	logger.Log.Debugf("模型 [%s] 返回 %d 字符，耗时 %s", modelName, len(resp.Content), time.Since(start).Round(time.Millisecond))

	out := cleanJSON(resp.Content)
	if sch != nil {
		if err := sch.Validate(out); err != nil {
			return nil, fmt.Errorf("model %s, schema %s: %w", modelName, sch.Name, err)
		}
	} else if !json.Valid(out) {
		return nil, fmt.Errorf("model %s: %w: not JSON", modelName, ErrInvalidOutput)
	}
	return json.RawMessage(out), nil
}

// cleanJSON 去掉模型常见的 ```json 包裹
func cleanJSON(content string) []byte {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
