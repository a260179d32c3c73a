package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/engine"
)

// NewEngine 初始化出行情报引擎
func NewEngine(c *config.Config, logger log.Logger) (*engine.Engine, func(), error) {
	eng, cleanup, err := engine.NewFromConfig(c)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}
	if err := eng.CheckConfig(); err != nil {
		// 服务照常启动，请求会以 503 返回
		log.NewHelper(logger).Warnf("search is not configured: %v", err)
	}

	return eng, func() {
		log.NewHelper(logger).Info("Cleaning up travel intel engine")
		cleanup()
	}, nil
}
