package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lazypower/cadence/internal/store"
)

func TestCreateItem(t *testing.T) {
	srv := testServer(t)

	body := `{"type":"Routine","content":"Morning stretch","frequency":"daily","required_time":"quick"}`
	w := do(t, srv, "POST", "/api/users/u1/items", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var it store.Item
	json.Unmarshal(w.Body.Bytes(), &it)
	if it.ID == "" {
		t.Error("expected generated id")
	}
	if it.UserID != "u1" || it.Type != "routine" {
		t.Errorf("item = %+v", it)
	}

	got, err := srv.db.GetItem(it.ID)
	if err != nil || got == nil {
		t.Fatalf("GetItem: %v, %v", got, err)
	}
	if got.Frequency != "daily" {
		t.Errorf("frequency = %q, want daily", got.Frequency)
	}
}

func TestCreateItemDefaultsToTask(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/users/u1/items", `{"content":"buy milk"}`)
	var it store.Item
	json.Unmarshal(w.Body.Bytes(), &it)
	if it.Type != store.TypeTask {
		t.Errorf("type = %q, want task", it.Type)
	}
}

func TestCreateItemValidation(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"content":`},
		{"missing content", `{"type":"task"}`},
		{"bad type", `{"type":"chore","content":"dishes"}`},
	}
	for _, tt := range tests {
		w := do(t, srv, "POST", "/api/users/u1/items", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, http.StatusBadRequest)
		}
	}
}

func TestUpdateItemInvalidatesFeed(t *testing.T) {
	srv := testServer(t)
	seed(t, srv,
		store.Item{ID: "a", UserID: "u1", Type: "task", Content: "a", Priority: "low"},
		store.Item{ID: "b", UserID: "u1", Type: "task", Content: "b", Priority: "medium"},
	)

	res := decodeFeed(t, do(t, srv, "GET", "/api/users/u1/feed", "").Body.Bytes())
	if res.Items[0].Item.ID != "b" {
		t.Fatalf("expected b first, got %s", res.Items[0].Item.ID)
	}

	w := do(t, srv, "PUT", "/api/users/u1/items/a", `{"content":"a","priority":"critical"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d; body: %s", w.Code, w.Body.String())
	}

	res = decodeFeed(t, do(t, srv, "GET", "/api/users/u1/feed", "").Body.Bytes())
	if res.Metadata.Cached {
		t.Error("feed should be recomputed after update")
	}
	if res.Items[0].Item.ID != "a" {
		t.Errorf("expected a first after raising its priority, got %s", res.Items[0].Item.ID)
	}
	if res.Items[0].Item.Type != store.TypeTask {
		t.Errorf("type = %q, update without type should keep it", res.Items[0].Item.Type)
	}
}

func TestDeleteItem(t *testing.T) {
	srv := testServer(t)
	seed(t, srv, store.Item{ID: "a", UserID: "u1", Type: "task", Content: "a"})

	if w := do(t, srv, "DELETE", "/api/users/u1/items/a", ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, srv, "GET", "/api/users/u1/items/a", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if w := do(t, srv, "DELETE", "/api/users/u1/items/a", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestArchiveItem(t *testing.T) {
	srv := testServer(t)
	seed(t, srv,
		store.Item{ID: "a", UserID: "u1", Type: "task", Content: "a"},
		store.Item{ID: "b", UserID: "u1", Type: "task", Content: "b"},
	)
	do(t, srv, "GET", "/api/users/u1/feed", "")

	if w := do(t, srv, "POST", "/api/users/u1/items/a/archive", ""); w.Code != http.StatusOK {
		t.Fatalf("archive status = %d", w.Code)
	}

	res := decodeFeed(t, do(t, srv, "GET", "/api/users/u1/feed", "").Body.Bytes())
	if len(res.Items) != 1 || res.Items[0].Item.ID != "b" {
		t.Errorf("feed after archive = %+v", res.Items)
	}
}

func TestItemsAreScopedToUser(t *testing.T) {
	srv := testServer(t)
	seed(t, srv, store.Item{ID: "a", UserID: "u1", Type: "task", Content: "mine"})

	for _, req := range []struct{ method, path, body string }{
		{"GET", "/api/users/u2/items/a", ""},
		{"PUT", "/api/users/u2/items/a", `{"content":"stolen"}`},
		{"DELETE", "/api/users/u2/items/a", ""},
		{"POST", "/api/users/u2/items/a/archive", ""},
	} {
		w := do(t, srv, req.method, req.path, req.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want %d", req.method, req.path, w.Code, http.StatusNotFound)
		}
	}
}

func TestListItems(t *testing.T) {
	srv := testServer(t)
	seed(t, srv,
		store.Item{ID: "a", UserID: "u1", Type: "task", Content: "a"},
		store.Item{ID: "b", UserID: "u1", Type: "goal", Content: "b"},
	)

	w := do(t, srv, "GET", "/api/users/u1/items?type=goal", "")
	var resp struct {
		Count int          `json:"count"`
		Items []store.Item `json:"items"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.Items[0].ID != "b" {
		t.Errorf("list = %+v", resp)
	}

	w = do(t, srv, "GET", "/api/users/nobody/items", "")
	if got := w.Body.String(); got != "{\"count\":0,\"items\":[]}\n" {
		t.Errorf("empty list body = %q", got)
	}
}
