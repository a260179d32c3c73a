package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Laos", "travel_intel:report:laos"},
		{"  Viet Nam ", "travel_intel:report:viet_nam"},
		{"LAOS", "travel_intel:report:laos"},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCache(client, time.Minute)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Get(ctx, "Laos"); err == nil || err == ErrMiss {
		t.Errorf("Get() error = %v, want connection error", err)
	}
	rec := &storage.Record{Report: model.NeutralReport("Laos", nil)}
	if err := c.Set(ctx, rec); err == nil {
		t.Error("Set() expected connection error")
	}
}
