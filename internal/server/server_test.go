package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/feedcache"
	"github.com/lazypower/cadence/internal/ranking"
	"github.com/lazypower/cadence/internal/store"
	"github.com/lazypower/cadence/internal/usercontext"
)

var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return testNow }
	p := ranking.NewPipeline(db, engine.New(engine.DefaultWeights), time.UTC)
	p.Contexts = &usercontext.Provider{Now: clock, Location: time.UTC}
	feeds := ranking.NewService(p, feedcache.New[*ranking.FeedResult](feedcache.DefaultTTL))

	srv := New(db, feeds, "test-version")
	srv.now = clock
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if _, ok := body["cache"].(map[string]any); !ok {
		t.Errorf("cache = %v, want stats object", body["cache"])
	}
}

func TestParseEndpoint(t *testing.T) {
	srv := testServer(t)

	body := `{"frequency":"3x week","priority":"urgent","required_time":"1h 30m","due":"in 2 weeks","now":"2024-01-01T09:00:00Z"}`
	w := do(t, srv, "POST", "/api/parse", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Attributes struct {
			FrequencyScore      float64   `json:"frequency_score"`
			TimesPerWeek        float64   `json:"times_per_week"`
			PriorityScore       int       `json:"priority_score"`
			TimeRequiredMinutes int       `json:"time_required_minutes"`
			DueDate             time.Time `json:"due_date"`
		} `json:"attributes"`
		Failed []string `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Attributes.FrequencyScore != 70 || resp.Attributes.TimesPerWeek != 3 {
		t.Errorf("frequency = %v/%v, want 70/3", resp.Attributes.FrequencyScore, resp.Attributes.TimesPerWeek)
	}
	if resp.Attributes.PriorityScore != 100 {
		t.Errorf("priority = %d, want 100", resp.Attributes.PriorityScore)
	}
	if resp.Attributes.TimeRequiredMinutes != 90 {
		t.Errorf("time required = %d, want 90", resp.Attributes.TimeRequiredMinutes)
	}
	if got := resp.Attributes.DueDate.Format("2006-01-02"); got != "2024-01-15" {
		t.Errorf("due = %s, want 2024-01-15", got)
	}
	if len(resp.Failed) != 0 {
		t.Errorf("failed = %v, want none", resp.Failed)
	}
}

func TestParseEndpointReportsFailures(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/parse", `{"frequency":"gibberish","due":"nonsense"}`)
	var resp struct {
		Failed []string `json:"failed"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Failed) != 2 || resp.Failed[0] != "frequency" || resp.Failed[1] != "due" {
		t.Errorf("failed = %v, want [frequency due]", resp.Failed)
	}
}

func TestParseEndpointBadNow(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/parse", `{"due":"tomorrow","now":"yesterday"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
