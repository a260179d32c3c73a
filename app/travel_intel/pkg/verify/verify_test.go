package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/scrape"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/trace"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Results: f.results}, nil
}

func (f *fakeSearcher) CheckConfig() error { return nil }

type fakeFetcher struct {
	outcomes map[string]*scrape.Outcome
	calls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) *scrape.Outcome {
	f.calls = append(f.calls, rawURL)
	if out, ok := f.outcomes[rawURL]; ok {
		return out
	}
	return &scrape.Outcome{Success: false, Err: errors.New("connection refused")}
}

func daysAgo(n int) string {
	return now.AddDate(0, 0, -n).Format(time.RFC3339)
}

func results(n int) []search.Result {
	out := make([]search.Result, n)
	for i := range out {
		out[i] = search.Result{Title: fmt.Sprintf("r%d", i+1), URL: fmt.Sprintf("https://news.example/%d", i+1)}
	}
	return out
}

func query() model.SearchQuery {
	return model.SearchQuery{Category: model.Category{ID: "health"}, Text: "health Laos"}
}

func TestVerify_FiltersFailedAndStale(t *testing.T) {
	s := &fakeSearcher{results: results(5)}
	f := &fakeFetcher{outcomes: map[string]*scrape.Outcome{
		"https://news.example/1": {Success: true, Content: "one", PublishedDate: daysAgo(10)},
		"https://news.example/3": {Success: true, Content: "three", PublishedDate: daysAgo(40)},
		"https://news.example/5": {Success: true, Content: "five", PublishedDate: daysAgo(5)},
	}}
	tr := trace.New()

	got := New(s, f, WithClock(func() time.Time { return now })).Verify(context.Background(), query(), tr)

	if len(got) != 2 {
		t.Fatalf("Verify() = %+v, want 2 sources", got)
	}
	if got[0].URL != "https://news.example/1" || got[1].URL != "https://news.example/5" {
		t.Errorf("Verify() urls = %s, %s", got[0].URL, got[1].URL)
	}
	if got[0].Content != "one" {
		t.Errorf("content = %q", got[0].Content)
	}
	if len(f.calls) != 5 {
		t.Errorf("fetch calls = %d, want 5", len(f.calls))
	}

	joined := strings.Join(tr.Lines(), "\n")
	for _, want := range []string{"skipped https://news.example/2", "skipped https://news.example/4", "discarded https://news.example/3"} {
		if !strings.Contains(joined, want) {
			t.Errorf("trace missing %q:\n%s", want, joined)
		}
	}
}

func TestVerify_RespectsMaxCandidates(t *testing.T) {
	s := &fakeSearcher{results: results(8)}
	f := &fakeFetcher{}

	New(s, f, WithMaxCandidates(3)).Verify(context.Background(), query(), trace.Discard)

	if len(f.calls) != 3 {
		t.Errorf("fetch calls = %d, want 3", len(f.calls))
	}
	for i, u := range f.calls {
		if want := fmt.Sprintf("https://news.example/%d", i+1); u != want {
			t.Errorf("call %d = %s, want %s (search order)", i, u, want)
		}
	}
}

func TestVerify_UndatedIncluded(t *testing.T) {
	s := &fakeSearcher{results: results(3)}
	s.results[2].PublishedDate = daysAgo(90)
	f := &fakeFetcher{outcomes: map[string]*scrape.Outcome{
		"https://news.example/1": {Success: true, Content: "no date"},
		"https://news.example/2": {Success: true, Content: "garbage date", PublishedDate: "sometime last week"},
		// 抓取没有日期时使用搜索结果中的日期
		"https://news.example/3": {Success: true, Content: "search date"},
	}}
	tr := trace.New()

	got := New(s, f, WithClock(func() time.Time { return now })).Verify(context.Background(), query(), tr)

	if len(got) != 2 {
		t.Fatalf("Verify() = %+v, want 2 sources", got)
	}
	joined := strings.Join(tr.Lines(), "\n")
	if !strings.Contains(joined, "no publish date for https://news.example/1") {
		t.Errorf("missing undated warning:\n%s", joined)
	}
	if !strings.Contains(joined, `unparsable publish date "sometime last week"`) {
		t.Errorf("missing unparsable warning:\n%s", joined)
	}
}

func TestVerify_SearchFailures(t *testing.T) {
	tests := []struct {
		name string
		s    *fakeSearcher
		want string
	}{
		{"forbidden", &fakeSearcher{err: search.StatusError("google cse", 403, "")}, "permission denied"},
		{"quota", &fakeSearcher{err: search.StatusError("google cse", 429, "")}, "quota exceeded"},
		{"credentials", &fakeSearcher{err: fmt.Errorf("%w: no key", search.ErrMissingCredentials)}, "missing credentials"},
		{"no results", &fakeSearcher{}, "no results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{}
			tr := trace.New()
			got := New(tt.s, f).Verify(context.Background(), query(), tr)
			if len(got) != 0 {
				t.Errorf("Verify() = %+v, want empty", got)
			}
			if len(f.calls) != 0 {
				t.Errorf("fetch calls = %d, want 0", len(f.calls))
			}
			if joined := strings.Join(tr.Lines(), "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("trace missing %q:\n%s", tt.want, joined)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"2026-10-05T08:00:00+07:00", true},
		{"2026-10-05", true},
		{"October 5, 2026", true},
		{"Mon, 05 Oct 2026 08:00:00 GMT", true},
		{"", false},
		{"yesterday-ish", false},
	}
	for _, tt := range tests {
		if _, ok := parseDate(tt.in); ok != tt.wantOK {
			t.Errorf("parseDate(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
	}
}
