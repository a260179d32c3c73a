package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

func TestRenderHTML(t *testing.T) {
	r := &model.IntelReport{
		RunID:       "r1",
		Country:     "Laos",
		GeneratedAt: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
		Categories: map[string][]model.IntelItem{
			"health": {{Summary: "Dengue <rising>", Source: "https://laotiantimes.com/dengue"}},
			"theft":  {},
		},
		Sources: []string{"https://laotiantimes.com/dengue"},
	}
	var buf bytes.Buffer
	if err := renderHTML(&buf, r, []string{"[health] verified https://laotiantimes.com/dengue"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Travel Radar: Laos", "Health", "Dengue &lt;rising&gt;", `href="https://laotiantimes.com/dengue"`, "Nothing notable found.", "Execution trace"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Index(out, "Health") > strings.Index(out, "Theft") {
		t.Error("categories not in sorted order")
	}
}

func TestRenderHTML_Neutral(t *testing.T) {
	r := model.NeutralReport("Laos", model.DefaultCategories())
	var buf bytes.Buffer
	if err := renderHTML(&buf, r, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No significant travel safety information found for Laos.") {
		t.Error("neutral notice not rendered")
	}
	if strings.Contains(buf.String(), "Execution trace") {
		t.Error("empty trace should not render")
	}
}

func TestPrintQueries(t *testing.T) {
	cats := []model.Category{
		{ID: "health", Scopes: []model.SourceScope{model.ScopeRegional, model.ScopeLocal}},
		{ID: "theft", Scopes: []model.SourceScope{model.ScopeLocal}},
	}
	qs := []model.SearchQuery{
		{Category: cats[1], Text: "theft Laos site:laotiantimes.com"},
		{Category: cats[0], Text: "health Laos site:laotiantimes.com"},
	}
	var buf bytes.Buffer
	printQueries(&buf, cats, qs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "health") || !strings.Contains(lines[0], "regional,local") || !strings.HasSuffix(lines[0], "health Laos site:laotiantimes.com") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "theft") || !strings.HasSuffix(lines[1], "theft Laos site:laotiantimes.com") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

type ctxSaver struct {
	ctxErr error
	calls  int
}

func (s *ctxSaver) SaveReport(ctx context.Context, report *model.IntelReport, trace []string) error {
	s.calls++
	s.ctxErr = ctx.Err()
	return s.ctxErr
}

func TestSaveHistory_AfterDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	s := &ctxSaver{}
	saveHistory(ctx, s, model.NeutralReport("Laos", model.DefaultCategories()), nil)
	if s.calls != 1 {
		t.Fatalf("SaveReport calls = %d, want 1", s.calls)
	}
	if s.ctxErr != nil {
		t.Errorf("save context error = %v, want live context", s.ctxErr)
	}
}
