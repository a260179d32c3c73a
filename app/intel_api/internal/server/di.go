package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/data"
	"github.com/iWorld-y/travel_radar/app/intel_api/internal/scheduler"
	"github.com/iWorld-y/travel_radar/app/intel_api/internal/service"
	"github.com/iWorld-y/travel_radar/app/intel_api/internal/usecase"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/engine"
)

// ProviderSet 是情报服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewGRPCServer,
	NewEngine,
	scheduler.NewScheduler,

	// Data providers
	data.NewData,
	data.NewReportRepo,
	data.NewReportCache,

	// UseCase providers
	usecase.NewReportUseCase,
	wire.Bind(new(usecase.Runner), new(*engine.Engine)),
	wire.Bind(new(scheduler.Refresher), new(*usecase.ReportUseCase)),

	// Service providers
	service.NewIntelService,
)
