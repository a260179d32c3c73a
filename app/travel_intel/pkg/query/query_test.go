package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

func category(id string) model.Category {
	for _, c := range model.DefaultCategories() {
		if c.ID == id {
			return c
		}
	}
	panic("unknown category " + id)
}

func TestBuild_LaosHealth(t *testing.T) {
	lists := model.SourceLists{
		Regional: []string{"thediplomat.com"},
		Local:    []string{"laotiantimes.com", "vientianetimes.org.la"},
	}
	q := Build(category("health"), "Laos", lists)

	want := "(health risks OR disease outbreaks) Laos site:laotiantimes.com OR site:vientianetimes.org.la"
	if q.Text != want {
		t.Errorf("Build() = %q, want %q", q.Text, want)
	}
	if q.Category.ID != "health" {
		t.Errorf("category = %q", q.Category.ID)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		cat   model.Category
		lists model.SourceLists
		want  string
	}{
		{
			name: "no sites degrades to unrestricted search",
			cat:  category("theft"),
			want: "(pickpocketing OR theft OR robbery tourists) Narnia",
		},
		{
			name: "scope order official then regional",
			cat:  category("advisories"),
			lists: model.SourceLists{
				Official: []string{"travel.state.gov"},
				Regional: []string{"thediplomat.com"},
				Local:    []string{"ignored.example"},
			},
			want: "(travel advisory OR travel warning OR safety alert) Narnia site:travel.state.gov OR site:thediplomat.com",
		},
		{
			name: "duplicates and blanks removed",
			cat:  category("political"),
			lists: model.SourceLists{
				Official: []string{"A.gov", " "},
				Regional: []string{"a.gov", "b.com"},
			},
			want: "(protests OR political unrest OR civil unrest) Narnia site:a.gov OR site:b.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.cat, "Narnia", tt.lists).Text; got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_CapsSites(t *testing.T) {
	var local []string
	for i := 0; i < MaxSites+5; i++ {
		local = append(local, fmt.Sprintf("site%d.example", i))
	}
	q := Build(category("theft"), "Narnia", model.SourceLists{Local: local})
	if n := strings.Count(q.Text, "site:"); n != MaxSites {
		t.Errorf("site clauses = %d, want %d", n, MaxSites)
	}
}
