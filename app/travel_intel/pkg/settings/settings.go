package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
)

// KeyOfficialSources 官方来源站点列表，逗号分隔
const KeyOfficialSources = "official_sources"

// ErrUnknownKey 不支持的设置项
var ErrUnknownKey = errors.New("unknown setting key")

// Settings 运行开始时读取的一份设置快照
type Settings struct {
	OfficialSources []string
	Raw             map[string]string
}

// Store 设置存储
type Store interface {
	Get(ctx context.Context) (*Settings, error)
}

// Known 可写入的设置项
var Known = []string{KeyOfficialSources}

func fromRaw(raw map[string]string) *Settings {
	return &Settings{
		OfficialSources: config.SplitList(raw[KeyOfficialSources]),
		Raw:             raw,
	}
}

// StaticStore 来自配置文件的固定设置
type StaticStore struct {
	raw map[string]string
}

// NewStaticStore 创建固定设置
func NewStaticStore(officialSources []string) *StaticStore {
	return &StaticStore{raw: map[string]string{KeyOfficialSources: strings.Join(officialSources, ",")}}
}

// Get implements Store
func (s *StaticStore) Get(ctx context.Context) (*Settings, error) {
	raw := make(map[string]string, len(s.raw))
	for k, v := range s.raw {
		raw[k] = v
	}
	return fromRaw(raw), nil
}
