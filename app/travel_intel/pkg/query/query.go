package query

import (
	"strings"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

// MaxSites 单条查询中 site: 限定的上限，避免超出搜索引擎的查询长度
const MaxSites = 12

// Build 组装主题查询：主题关键词 + 国家 + site 限定
func Build(category model.Category, country string, lists model.SourceLists) model.SearchQuery {
	parts := []string{strings.TrimSpace(category.Topic), strings.TrimSpace(country)}
	if clause := siteClause(collectSites(category.Scopes, lists)); clause != "" {
		parts = append(parts, clause)
	}
	return model.SearchQuery{
		Category: category,
		Text:     strings.Join(nonEmpty(parts), " "),
	}
}

func collectSites(scopes []model.SourceScope, lists model.SourceLists) []string {
	seen := make(map[string]bool)
	var sites []string
	for _, scope := range scopes {
		for _, site := range lists.ForScope(scope) {
			site = strings.ToLower(strings.TrimSpace(site))
			if site == "" || seen[site] {
				continue
			}
			seen[site] = true
			sites = append(sites, site)
			if len(sites) == MaxSites {
				return sites
			}
		}
	}
	return sites
}

func siteClause(sites []string) string {
	if len(sites) == 0 {
		return ""
	}
	terms := make([]string, len(sites))
	for i, s := range sites {
		terms[i] = "site:" + s
	}
	return strings.Join(terms, " OR ")
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
