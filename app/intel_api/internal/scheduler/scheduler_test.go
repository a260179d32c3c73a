package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
)

type fakeRefresher struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, country string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, country)
	if f.fails[country] {
		return errors.New("search quota exceeded")
	}
	return nil
}

func scheduleConfig(cron string, countries ...string) *config.Config {
	return &config.Config{Schedule: config.ScheduleConfig{Cron: cron, Countries: countries}}
}

func TestNewScheduler(t *testing.T) {
	r := &fakeRefresher{}
	tests := []struct {
		name        string
		cfg         *config.Config
		wantErr     bool
		wantEnabled bool
	}{
		{"disabled without cron", scheduleConfig("", "Laos"), false, false},
		{"disabled without countries", scheduleConfig("0 6 * * *"), false, false},
		{"enabled", scheduleConfig("0 6 * * *", "Laos"), false, true},
		{"invalid", scheduleConfig("every morning", "Laos"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(tt.cfg, r, log.DefaultLogger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewScheduler() error = %v", err)
			}
			if err == nil && s.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", s.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	r := &fakeRefresher{fails: map[string]bool{"Myanmar": true}}
	s, err := NewScheduler(scheduleConfig("@daily", "Laos", "Myanmar", "Vietnam"), r, log.DefaultLogger)
	if err != nil {
		t.Fatal(err)
	}
	if failed := s.RunOnce(context.Background()); failed != 1 {
		t.Errorf("RunOnce() failed = %d, want 1", failed)
	}
	if len(r.seen) != 3 {
		t.Errorf("refreshed = %v, want all three", r.seen)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	r := &fakeRefresher{}
	s, err := NewScheduler(scheduleConfig("@yearly", "Laos"), r, log.DefaultLogger)
	if err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- s.Start(context.Background()) }()

	// 等待 Start 进入循环
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		started := s.cancel != nil
		s.mu.Unlock()
		if started || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := <-errc; err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if len(r.seen) != 0 {
		t.Errorf("unexpected refresh: %v", r.seen)
	}
}

func TestScheduler_DisabledStartReturns(t *testing.T) {
	s, _ := NewScheduler(scheduleConfig(""), &fakeRefresher{}, log.DefaultLogger)
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
