package tavily

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
		if got := r.Header.Get("Authorization"); got != "Bearer tv-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Query != "scams Laos" || req.MaxResults != 5 || req.SearchDepth != "basic" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(SearchResponse{Results: []SearchResult{
			{Title: "Scam alert", URL: "https://laotiantimes.com/a", Content: "snippet", PublishedDate: "2026-10-01"},
		}})
	}))
	defer srv.Close()

	c := NewClient("tv-key").WithBaseURL(srv.URL)
	resp, err := c.Search(context.Background(), &search.Request{Query: "scams Laos"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://laotiantimes.com/a" || resp.Results[0].Snippet != "snippet" {
		t.Errorf("Search() = %+v", resp.Results)
	}
}

func TestClient_Search_Quota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient("k").WithBaseURL(srv.URL).Search(context.Background(), &search.Request{Query: "q"})
	if !errors.Is(err, search.ErrQuota) {
		t.Errorf("err = %v, want ErrQuota", err)
	}
}

func TestClient_CheckConfig(t *testing.T) {
	if err := NewClient("").CheckConfig(); !errors.Is(err, search.ErrMissingCredentials) {
		t.Errorf("CheckConfig() = %v", err)
	}
	if err := NewClient("k").CheckConfig(); err != nil {
		t.Errorf("CheckConfig() = %v", err)
	}
}
