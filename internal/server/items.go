package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/cadence/internal/store"
)

// itemRequest is the editable subset of an item.
type itemRequest struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Content           string `json:"content"`
	ContentShort      string `json:"content_short"`
	Priority          string `json:"priority"`
	Status            string `json:"status"`
	Due               string `json:"due"`
	Frequency         string `json:"frequency"`
	RequiredTime      string `json:"required_time"`
	PerformanceStreak int    `json:"performance_streak"`
	Stage             string `json:"stage"`
}

func (req itemRequest) apply(it *store.Item) {
	it.Type = req.Type
	it.Content = req.Content
	it.ContentShort = req.ContentShort
	it.Priority = req.Priority
	it.Status = req.Status
	it.Due = req.Due
	it.Frequency = req.Frequency
	it.RequiredTime = req.RequiredTime
	it.PerformanceStreak = req.PerformanceStreak
	it.Stage = req.Stage
}

// changed drops the user's cached feeds after a write.
func (s *Server) changed(userID string) {
	if n := s.feeds.InvalidateUser(userID); n > 0 {
		log.Printf("server: invalidated %d cached feeds for %s", n, userID)
	}
}

// ownedItem loads an item and checks it belongs to the URL's user.
func (s *Server) ownedItem(w http.ResponseWriter, r *http.Request) (*store.Item, bool) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")

	it, err := s.db.GetItem(itemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if it == nil || it.UserID != userID {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return it, true
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	f := store.ItemFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			f.Limit = n
		}
	}

	items, err := s.db.FetchItems(r.Context(), userID, f)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if items == nil {
		items = []store.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	it := store.Item{ID: req.ID, UserID: userID}
	req.apply(&it)
	if it.Type == "" {
		it.Type = store.TypeTask
	}
	if err := s.db.CreateItem(&it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.changed(userID)
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Type == "" {
		req.Type = it.Type
	}
	req.apply(it)
	if err := s.db.UpdateItem(it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.changed(it.UserID)
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteItem(it.UserID, it.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.changed(it.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleArchiveItem(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	if err := s.db.ArchiveItem(it.UserID, it.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.changed(it.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
