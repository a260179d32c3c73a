package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/conf"
	"github.com/iWorld-y/travel_radar/app/intel_api/internal/service"
)

// IntelServer travelintel.v1.Intel 服务
type IntelServer interface {
	RunStruct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

const runMethod = "/travelintel.v1.Intel/Run"

var intelServiceDesc = ggrpc.ServiceDesc{
	ServiceName: "travelintel.v1.Intel",
	HandlerType: (*IntelServer)(nil),
	Methods: []ggrpc.MethodDesc{
		{MethodName: "Run", Handler: runHandler},
	},
	Streams:  []ggrpc.StreamDesc{},
	Metadata: "travelintel/v1/intel.proto",
}

func runHandler(srv any, ctx context.Context, dec func(any) error, interceptor ggrpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IntelServer).RunStruct(ctx, in)
	}
	info := &ggrpc.UnaryServerInfo{Server: srv, FullMethod: runMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IntelServer).RunStruct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func NewGRPCServer(c *conf.Server, s *service.IntelService, logger log.Logger) *grpc.Server {
	var opts = []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	timeout := defaultTimeout
	if c.Grpc != nil {
		timeout = parseTimeout(c.Grpc.Timeout)
		if c.Grpc.Addr != "" {
			opts = append(opts, grpc.Address(c.Grpc.Addr))
		}
	}
	opts = append(opts, grpc.Timeout(timeout))

	srv := grpc.NewServer(opts...)
	srv.RegisterService(&intelServiceDesc, s)
	return srv
}
