package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iWorld-y/travel_radar/app/intel_api/internal/usecase"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/engine"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

// RunRequest POST /v1/intel 请求体
type RunRequest struct {
	CountryName string `json:"countryName"`
	Fresh       bool   `json:"fresh"`
}

// RunReply 报告与执行轨迹
type RunReply struct {
	Report *model.IntelReport `json:"report"`
	Trace  []string           `json:"trace"`
	Cached bool               `json:"cached"`
}

type IntelService struct {
	uc  *usecase.ReportUseCase
	log *log.Helper
}

func NewIntelService(uc *usecase.ReportUseCase, logger log.Logger) *IntelService {
	return &IntelService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// Run 生成或返回缓存的报告
func (s *IntelService) Run(ctx context.Context, req *RunRequest) (*RunReply, error) {
	res, err := s.uc.Run(ctx, req.CountryName, req.Fresh)
	if err != nil {
		return nil, s.toError(err)
	}
	return &RunReply{Report: res.Record.Report, Trace: res.Record.Trace, Cached: res.Cached}, nil
}

// Latest 最近一次保存的报告
func (s *IntelService) Latest(ctx context.Context, country string) (*RunReply, error) {
	rec, err := s.uc.Latest(ctx, country)
	if err != nil {
		return nil, s.toError(err)
	}
	return &RunReply{Report: rec.Report, Trace: rec.Trace, Cached: true}, nil
}

// toError 映射为 kratos 错误
func (s *IntelService) toError(err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidCountry):
		return kerrors.BadRequest("INVALID_COUNTRY", err.Error())
	case errors.Is(err, engine.ErrConfig):
		return kerrors.ServiceUnavailable("NOT_CONFIGURED", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
	case errors.Is(err, context.DeadlineExceeded):
		return kerrors.GatewayTimeout("DEADLINE_EXCEEDED", err.Error())
	default:
		s.log.Errorf("intel request failed: %v", err)
		return kerrors.InternalServer("INTERNAL", "internal error")
	}
}

// HTTP handlers

func (s *IntelService) RunHTTP(ctx http.Context) error {
	var in RunRequest
	if err := ctx.Bind(&in); err != nil {
		return kerrors.BadRequest("INVALID_BODY", err.Error())
	}
	if v := ctx.Query().Get("fresh"); v != "" {
		in.Fresh, _ = strconv.ParseBool(v)
	}
	h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
		return s.Run(ctx, req.(*RunRequest))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *IntelService) LatestHTTP(ctx http.Context) error {
	country := ctx.Vars().Get("country")
	h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
		return s.Latest(ctx, req.(string))
	})
	out, err := h(ctx, country)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// gRPC handler，请求与响应均为 google.protobuf.Struct

func (s *IntelService) RunStruct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := &RunRequest{
		CountryName: in.GetFields()["countryName"].GetStringValue(),
		Fresh:       in.GetFields()["fresh"].GetBoolValue(),
	}
	reply, err := s.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(reply)
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
