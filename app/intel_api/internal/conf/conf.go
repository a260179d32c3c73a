package conf

import "github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"

type Bootstrap struct {
	Server *Server         `json:"server"`
	Intel  *config.Config `json:"intel"`
}

type Server struct {
	Http *HTTP `json:"http"`
	Grpc *GRPC `json:"grpc"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type GRPC struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}
