package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lazypower/cadence/internal/ranking"
)

func TestHealthyFalseWhenDown(t *testing.T) {
	t.Setenv("CADENCE_URL", "http://127.0.0.1:1")
	if New("").Healthy() {
		t.Error("expected Healthy() = false when server is not running")
	}
}

func TestNewPrefersExplicitURL(t *testing.T) {
	t.Setenv("CADENCE_URL", "http://example.invalid")
	if c := New("http://127.0.0.1:9999"); c.serverURL != "http://127.0.0.1:9999" {
		t.Errorf("serverURL = %q", c.serverURL)
	}
	if c := New(""); c.serverURL != "http://example.invalid" {
		t.Errorf("serverURL = %q, want CADENCE_URL", c.serverURL)
	}
}

func TestInvalidate(t *testing.T) {
	var gotPath, gotMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "evicted": 3})
	}))
	defer ts.Close()

	n, err := New(ts.URL).Invalidate("u1")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 3 {
		t.Errorf("evicted = %d, want 3", n)
	}
	if gotMethod != "POST" || gotPath != "/api/users/u1/invalidate" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestFeed(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(ranking.FeedResult{
			Metadata: ranking.Metadata{Algorithm: ranking.Algorithm, TotalItems: 7, Cached: true},
		})
	}))
	defer ts.Close()

	res, err := New(ts.URL).Feed("u1", ranking.Options{Limit: 5, Filters: ranking.Filters{Type: "task"}})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if gotQuery != "limit=5&type=task" {
		t.Errorf("query = %q", gotQuery)
	}
	if res.Metadata.TotalItems != 7 || !res.Metadata.Cached {
		t.Errorf("metadata = %+v", res.Metadata)
	}
}

func TestErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"persistence failure"}`))
	}))
	defer ts.Close()

	if _, err := New(ts.URL).Feed("u1", ranking.Options{}); err == nil {
		t.Error("expected error for 503")
	}
}
