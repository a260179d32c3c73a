package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/gorhill/cronexpr"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
)

// Refresher 重新生成某国的报告
type Refresher interface {
	Refresh(ctx context.Context, country string) error
}

var _ transport.Server = (*Scheduler)(nil)

// Scheduler 按 cron 表达式刷新关注国家的报告
type Scheduler struct {
	expr      *cronexpr.Expression
	countries []string
	refresher Refresher
	log       *log.Helper
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler 未配置 cron 或国家列表时返回一个空转的调度器
func NewScheduler(c *config.Config, r Refresher, logger log.Logger) (*Scheduler, error) {
	s := &Scheduler{
		countries: c.Schedule.Countries,
		refresher: r,
		log:       log.NewHelper(logger),
		now:       time.Now,
	}
	if c.Schedule.Cron == "" || len(c.Schedule.Countries) == 0 {
		return s, nil
	}
	expr, err := cronexpr.Parse(c.Schedule.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule.cron %q: %w", c.Schedule.Cron, err)
	}
	s.expr = expr
	return s, nil
}

// Enabled 是否配置了定时任务
func (s *Scheduler) Enabled() bool {
	return s.expr != nil
}

// Start 阻塞直到 Stop 或 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.log.Info("scheduler disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()
	defer close(done)

	s.log.Infof("scheduler started for %d countries", len(s.countries))
	for {
		next := s.expr.Next(s.now())
		if next.IsZero() {
			s.log.Warn("schedule has no future run time, stopping")
			return nil
		}
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop implements transport.Server
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce 依次刷新每个国家，单个失败不影响其他国家
func (s *Scheduler) RunOnce(ctx context.Context) (failed int) {
	for _, country := range s.countries {
		if ctx.Err() != nil {
			return failed
		}
		start := s.now()
		if err := s.refresher.Refresh(ctx, country); err != nil {
			failed++
			s.log.Errorf("scheduled refresh failed [%s]: %v", country, err)
			continue
		}
		s.log.Infof("scheduled refresh done [%s] in %s", country, s.now().Sub(start).Round(time.Second))
	}
	return failed
}
