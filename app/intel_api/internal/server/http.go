package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/conf"
	"github.com/iWorld-y/travel_radar/app/intel_api/internal/service"
)

// 一次完整运行可能持续数分钟
const defaultTimeout = 5 * time.Minute

func NewHTTPServer(c *conf.Server, s *service.IntelService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		http.Timeout(parseTimeout(c.Http.Timeout)),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}

	srv := http.NewServer(opts...)
	r := srv.Route("/")
	r.POST("/v1/intel", s.RunHTTP)
	r.GET("/v1/intel/{country}/latest", s.LatestHTTP)

	srv.Handle("/metrics", promhttp.Handler())
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return srv
}

func parseTimeout(s string) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return defaultTimeout
}
