package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("categories") != "news" || q.Get("q") != "theft Laos" {
			t.Errorf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(SearchResponse{Results: []SearchResult{
			{Title: "a", URL: "https://a.example"},
			{Title: "b", URL: "https://b.example"},
			{Title: "c", URL: "https://c.example"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5)
	resp, err := c.Search(context.Background(), &search.Request{Query: "theft Laos", Topic: "news", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
}

func TestClient_Search_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Search(context.Background(), &search.Request{Query: "q"})
	if !errors.Is(err, search.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestClient_CheckConfig(t *testing.T) {
	if err := NewClient("", 0).CheckConfig(); !errors.Is(err, search.ErrMissingCredentials) {
		t.Errorf("CheckConfig() = %v", err)
	}
}
