package trace

import (
	"fmt"
	"sync"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
)

// Sink 执行轨迹的写入端
type Sink interface {
	Addf(format string, args ...any)
}

// Trace 一次运行的执行轨迹，只追加
type Trace struct {
	mu    sync.Mutex
	lines []string
}

// New 创建空轨迹
func New() *Trace {
	return &Trace{}
}

// Addf 追加一行
func (t *Trace) Addf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	t.mu.Lock()
	t.lines = append(t.lines, line)
	t.mu.Unlock()
	logger.Log.Debug(line)
}

// Lines 返回当前轨迹的副本
func (t *Trace) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len 当前行数
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines)
}

type prefixed struct {
	sink   Sink
	prefix string
}

func (p prefixed) Addf(format string, args ...any) {
	p.sink.Addf("%s %s", p.prefix, fmt.Sprintf(format, args...))
}

// WithPrefix 为每一行加上前缀，通常是 "[category]"
func WithPrefix(sink Sink, prefix string) Sink {
	return prefixed{sink: sink, prefix: prefix}
}

// Discard 丢弃所有写入
var Discard Sink = discard{}

type discard struct{}

func (discard) Addf(string, ...any) {}
