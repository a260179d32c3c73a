package sources

import (
	"strings"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

// defaultRegional 覆盖整个东南亚地区的新闻来源
var defaultRegional = []string{
	"thediplomat.com",
	"channelnewsasia.com",
	"asia.nikkei.com",
	"scmp.com",
}

// defaultLocal 各国本地新闻来源，键为小写国家名
var defaultLocal = map[string][]string{
	"laos":        {"laotiantimes.com", "vientianetimes.org.la"},
	"thailand":    {"bangkokpost.com", "nationthailand.com", "khaosodenglish.com"},
	"vietnam":     {"vnexpress.net", "tuoitrenews.vn", "vietnamnews.vn"},
	"cambodia":    {"khmertimeskh.com", "phnompenhpost.com"},
	"myanmar":     {"irrawaddy.com", "frontiermyanmar.net"},
	"malaysia":    {"thestar.com.my", "malaymail.com", "freemalaysiatoday.com"},
	"singapore":   {"straitstimes.com", "todayonline.com"},
	"indonesia":   {"thejakartapost.com", "en.tempo.co", "jakartaglobe.id"},
	"philippines": {"inquirer.net", "rappler.com", "philstar.com"},
	"brunei":      {"borneobulletin.com.bn"},
	"timor-leste": {"tatoli.tl"},
}

// Registry 固定来源注册表，进程级只读
type Registry struct {
	regional []string
	local    map[string][]string
}

// NewRegistry 根据配置创建注册表，空配置时使用内置列表
func NewRegistry(regional []string, local map[string][]string) *Registry {
	r := &Registry{
		regional: defaultRegional,
		local:    make(map[string][]string, len(defaultLocal)+len(local)),
	}
	if len(regional) > 0 {
		r.regional = append([]string(nil), regional...)
	}
	for k, v := range defaultLocal {
		r.local[k] = v
	}
	for k, v := range local {
		r.local[normalize(k)] = append([]string(nil), v...)
	}
	return r
}

// Local 返回某国的本地来源，未知国家返回空列表
func (r *Registry) Local(country string) []string {
	return r.local[normalize(country)]
}

// Lists 组装一次运行的三组来源
func (r *Registry) Lists(country string, official []string) model.SourceLists {
	return model.SourceLists{
		Official: official,
		Regional: r.regional,
		Local:    r.Local(country),
	}
}

func normalize(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}
